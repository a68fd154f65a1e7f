package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdatePersonal(ctx context.Context, id uuid.UUID, s models.PersonalSection) error
	UpdateProfessional(ctx context.Context, id uuid.UUID, s models.ProfessionalSection) error
	UpdateCertificationFlags(ctx context.Context, id uuid.UUID, s models.CertificationSection) error
	UpdateCircumstances(ctx context.Context, id uuid.UUID, s models.CircumstanceSection) error
}
