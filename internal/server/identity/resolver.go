// Package identity resolves a stable profile id for an authenticated
// principal. Profiles are frequently bulk-imported from the CRM before the
// person ever signs up, and account-to-profile linkage happens lazily, so the
// resolver never assumes referential integrity between accounts and profiles.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/accounts"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/profiles"
)

// Resolver owns the precedence rule for mapping a principal to a profile.
// Every entry point into the editing workflow goes through this one type, so
// the fallback chain cannot diverge per call site.
type Resolver struct {
	accounts accounts.Repository
	profiles profiles.Repository
	logger   logging.Logger
}

func NewResolver(a accounts.Repository, p profiles.Repository, l logging.Logger) *Resolver {
	return &Resolver{
		accounts: a,
		profiles: p,
		logger:   l.With("module", "identity"),
	}
}

// Resolve returns the canonical profile id for the principal.
//
// The account lookup and the contact-address lookup are issued concurrently;
// a direct contact-address match wins even when the account also links to a
// profile, because imported profiles are authoritative over freshly created
// account linkage. When neither path resolves, common.ErrIdentityNotFound is
// returned — terminal for the session, the caller must go back to onboarding.
func (r *Resolver) Resolve(ctx context.Context, principal models.Principal) (uuid.UUID, error) {
	var (
		acc      *models.Account
		imported *models.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := r.accounts.GetByAuthID(gctx, principal.AuthID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}
		acc = a
		return nil
	})
	g.Go(func() error {
		if principal.Email == "" {
			return nil
		}
		p, err := r.profiles.GetByEmail(gctx, principal.Email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}
		imported = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return uuid.Nil, err
	}

	if imported != nil {
		if acc != nil && acc.ProfileID != nil && *acc.ProfileID != imported.ID {
			// linkage disagreement: keep the imported profile but make the
			// divergence visible instead of silently unifying it
			r.logger.Warn(ctx, "account linkage points to a different profile",
				"auth_id", principal.AuthID,
				"imported_profile_id", imported.ID,
				"linked_profile_id", *acc.ProfileID)
		}
		return imported.ID, nil
	}

	if acc != nil && acc.ProfileID != nil {
		p, err := r.profiles.GetByID(ctx, *acc.ProfileID)
		if err == nil {
			return p.ID, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return uuid.Nil, err
		}
		// dangling FK: treat like no linkage at all
	}

	return uuid.Nil, common.ErrIdentityNotFound
}
