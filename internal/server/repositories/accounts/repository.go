package accounts

import (
	"context"

	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

type Repository interface {
	GetByAuthID(ctx context.Context, authID string) (*models.Account, error)
}
