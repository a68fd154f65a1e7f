// Package profiles provides PostgreSQL-backed persistence for candidate
// profiles: whole-row reads plus partial per-section UPDATEs.
package profiles

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

// PostgresRepository implements profile storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, email, external_ref,
		first_name, last_name, date_of_birth, nationality, phone, city, country,
		category, category_other, primary_position, secondary_position, licenses, notes,
		stcw, stcw_expiry, eng1, eng1_expiry, b1b2_visa, b1b2_expiry, schengen_visa, schengen_expiry,
		smoker, visible_tattoos, marital_status, updated_at`

func (r *PostgresRepository) scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	var category sql.NullString
	err := row.Scan(
		&p.ID, &p.Email, &p.ExternalRef,
		&p.Personal.FirstName, &p.Personal.LastName, &p.Personal.DateOfBirth,
		&p.Personal.Nationality, &p.Personal.Phone, &p.Personal.City, &p.Personal.Country,
		&category, &p.Professional.CategoryOther, &p.Professional.PrimaryPosition,
		&p.Professional.SecondaryPosition, &p.Professional.Licenses, &p.Professional.Notes,
		&p.Certification.STCW, &p.Certification.STCWExpiry,
		&p.Certification.ENG1, &p.Certification.ENG1Expiry,
		&p.Certification.B1B2Visa, &p.Certification.B1B2Expiry,
		&p.Certification.SchengenVisa, &p.Certification.SchengenExpiry,
		&p.Circumstance.Smoker, &p.Circumstance.VisibleTattoos, &p.Circumstance.MaritalStatus,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if category.Valid {
		p.Professional.Category = models.Category(category.String)
	}
	// the stored contact address is also the personal-section email
	p.Personal.Email = p.Email
	return p, nil
}

// GetByID loads one profile by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + selectColumns + ` FROM profiles WHERE id = $1`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail loads one profile by its stored contact address. This is the
// lookup path used for rows created by bulk import from the CRM.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + selectColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// UpdatePersonal writes the personal-section columns only.
func (r *PostgresRepository) UpdatePersonal(ctx context.Context, id uuid.UUID, s models.PersonalSection) error {
	query := `
		UPDATE profiles SET
			first_name = $2, last_name = $3, date_of_birth = $4, nationality = $5,
			phone = $6, email = $7, city = $8, country = $9, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, s.FirstName, s.LastName, s.DateOfBirth, s.Nationality,
		s.Phone, s.Email, s.City, s.Country)
}

// UpdateProfessional writes the professional-section columns only.
func (r *PostgresRepository) UpdateProfessional(ctx context.Context, id uuid.UUID, s models.ProfessionalSection) error {
	query := `
		UPDATE profiles SET
			category = $2, category_other = $3, primary_position = $4,
			secondary_position = $5, licenses = $6, notes = $7, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, string(s.Category), s.CategoryOther, s.PrimaryPosition,
		s.SecondaryPosition, s.Licenses, s.Notes)
}

// UpdateCertificationFlags writes the nullable training/visa answers. The
// checklist itself lives in certification_entries and is reconciled
// separately.
func (r *PostgresRepository) UpdateCertificationFlags(ctx context.Context, id uuid.UUID, s models.CertificationSection) error {
	query := `
		UPDATE profiles SET
			stcw = $2, stcw_expiry = $3, eng1 = $4, eng1_expiry = $5,
			b1b2_visa = $6, b1b2_expiry = $7, schengen_visa = $8, schengen_expiry = $9,
			updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, s.STCW, s.STCWExpiry, s.ENG1, s.ENG1Expiry,
		s.B1B2Visa, s.B1B2Expiry, s.SchengenVisa, s.SchengenExpiry)
}

// UpdateCircumstances writes the personal-circumstance columns only.
func (r *PostgresRepository) UpdateCircumstances(ctx context.Context, id uuid.UUID, s models.CircumstanceSection) error {
	query := `
		UPDATE profiles SET
			smoker = $2, visible_tattoos = $3, marital_status = $4, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, s.Smoker, s.VisibleTattoos, s.MaritalStatus)
}
