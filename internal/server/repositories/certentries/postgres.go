// Package certentries provides the PostgreSQL-backed repository for
// certification rows. The table has a composite uniqueness constraint on
// (profile_id, cert_type), which is what makes reconciliation idempotent.
package certentries

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/dbx"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

// PostgresRepository implements certification-entry storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates one entry keyed by (profile_id, cert_type).
// Expiry and label are overwritten from the entry, including to NULL.
func (r *PostgresRepository) Upsert(ctx context.Context, e *models.CertificationEntry) error {
	query := `
		INSERT INTO certification_entries (profile_id, cert_type, expiry, label, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (profile_id, cert_type)
		DO UPDATE SET
			expiry = EXCLUDED.expiry,
			label = EXCLUDED.label,
			updated_at = now();
	`
	if _, err := r.db.ExecContext(ctx, query, e.ProfileID, e.CertType, e.Expiry, e.Label); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the entry for (profileID, certType). A missing row is not
// an error: absence already encodes "does not have it".
func (r *PostgresRepository) Delete(ctx context.Context, profileID uuid.UUID, certType string) error {
	query := `DELETE FROM certification_entries WHERE profile_id = $1 AND cert_type = $2`
	if _, err := r.db.ExecContext(ctx, query, profileID, certType); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByProfile returns every persisted entry for one profile.
func (r *PostgresRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.CertificationEntry, error) {
	query := `
		SELECT profile_id, cert_type, expiry, label, updated_at
		FROM certification_entries
		WHERE profile_id = $1
		ORDER BY cert_type
	`
	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to select certification entries: %w", err)
	}
	defer rows.Close()

	var result []*models.CertificationEntry
	for rows.Next() {
		var item models.CertificationEntry
		if err := rows.Scan(&item.ProfileID, &item.CertType, &item.Expiry, &item.Label, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
