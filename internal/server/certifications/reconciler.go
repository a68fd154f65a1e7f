// Package certifications reconciles the wizard's credential checklist against
// persisted certification rows: delete-if-false, upsert-if-true, keyed by
// (profile id, cert type).
package certifications

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/dbx"
	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/certentries"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/repomanager"
)

// ReconciliationError reports which checklist entries could not be persisted.
// It matches common.ErrReconciliationPartial via errors.Is.
type ReconciliationError struct {
	FailedTypes []string
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation failed for: %s", strings.Join(e.FailedTypes, ", "))
}

func (e *ReconciliationError) Is(target error) bool {
	return target == common.ErrReconciliationPartial
}

// Reconciler converts a desired checklist into concrete row operations.
type Reconciler struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	logger logging.Logger
}

func NewReconciler(db *sql.DB, rm repomanager.RepositoryManager, l logging.Logger) *Reconciler {
	return &Reconciler{
		db:     db,
		rm:     rm,
		logger: l.With("module", "certifications"),
	}
}

// Reconcile applies the desired checklist for one profile.
//
// The whole batch runs in a single transaction so overlapping reconcile calls
// never expose an interleaved half-state, but entries are still best-effort:
// each one executes under its own savepoint, so a failing entry is rolled back
// alone and the remaining entries proceed. When every entry succeeds the
// result is idempotent by the composite uniqueness constraint; when some fail,
// the successes commit and a ReconciliationError lists the rest.
func (r *Reconciler) Reconcile(ctx context.Context, profileID uuid.UUID, desired []models.DesiredCertification) error {
	if len(desired) == 0 {
		return nil
	}

	var failed []string

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.rm.CertificationEntries(tx)

		for i, d := range desired {
			sp := fmt.Sprintf("cert_entry_%d", i)
			if _, err := tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
				return fmt.Errorf("savepoint: %w", err)
			}

			if err := r.applyEntry(ctx, repo, profileID, d); err != nil {
				r.logger.Error(ctx, "checklist entry failed",
					"profile_id", profileID, "cert_type", d.Type, "error", err)
				failed = append(failed, d.Type)
				if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); err != nil {
					return fmt.Errorf("rollback to savepoint: %w", err)
				}
				continue
			}

			if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
				return fmt.Errorf("release savepoint: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	if len(failed) > 0 {
		return &ReconciliationError{FailedTypes: failed}
	}
	return nil
}

func (r *Reconciler) applyEntry(ctx context.Context, repo certentries.Repository, profileID uuid.UUID, d models.DesiredCertification) error {
	if !d.Has {
		return repo.Delete(ctx, profileID, d.Type)
	}
	return repo.Upsert(ctx, &models.CertificationEntry{
		ProfileID: profileID,
		CertType:  d.Type,
		Expiry:    d.Expiry,
		Label:     d.Label,
	})
}
