package certentries

import (
	"context"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, e *models.CertificationEntry) error
	Delete(ctx context.Context, profileID uuid.UUID, certType string) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.CertificationEntry, error)
}
