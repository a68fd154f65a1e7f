// Package accounts provides the PostgreSQL-backed repository for internal
// account records linking authenticated principals to profiles.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/dbx"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

// PostgresRepository implements account lookups over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByAuthID returns the account referencing the given external auth
// identifier, or common.ErrorNotFound when no account exists yet. ProfileID
// stays nil for accounts that were never linked to a profile.
func (r *PostgresRepository) GetByAuthID(ctx context.Context, authID string) (*models.Account, error) {
	query :=
		`SELECT id, auth_id, email, profile_id, created_at FROM accounts
		 WHERE auth_id = $1
		 `

	acc := &models.Account{}
	var profileID uuid.NullUUID
	err := r.db.QueryRowContext(ctx, query, authID).
		Scan(&acc.ID, &acc.AuthID, &acc.Email, &profileID, &acc.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if profileID.Valid {
		acc.ProfileID = &profileID.UUID
	}
	return acc, nil
}
