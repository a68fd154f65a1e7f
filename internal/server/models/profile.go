// Package models holds the data types shared by repositories and services:
// the candidate profile, its identity linkage, certification entries, and the
// per-section form payloads the wizard submits.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category of a candidate profile. Determines which certification answers are
// mandatory in validation.
type Category string

const (
	CategoryYacht     Category = "yacht"
	CategoryHousehold Category = "household"
	CategoryDual      Category = "dual"
	CategoryOther     Category = "other"
)

// Profile is the candidate record being edited. ID is immutable once resolved
// for a session: every write targets this id, never a re-derived one.
type Profile struct {
	ID          uuid.UUID
	Email       string
	ExternalRef *string // CRM candidate id, set for bulk-imported rows

	Personal      PersonalSection
	Professional  ProfessionalSection
	Certification CertificationSection
	Circumstance  CircumstanceSection

	UpdatedAt time.Time
}

// PersonalSection — step 1 of the wizard.
type PersonalSection struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Nationality string     `json:"nationality"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
}

// ProfessionalSection — step 2.
type ProfessionalSection struct {
	Category          Category `json:"category"`
	CategoryOther     string   `json:"category_other"` // required when Category == CategoryOther
	PrimaryPosition   string   `json:"primary_position"`
	SecondaryPosition string   `json:"secondary_position"`
	Licenses          string   `json:"licenses"`
	Notes             string   `json:"notes"`
}

// CertificationSection — step 3. The four yes/no answers are nullable on
// purpose: nil means "not answered yet", which validation distinguishes from
// an explicit no.
type CertificationSection struct {
	STCW           *bool      `json:"stcw"`
	STCWExpiry     *time.Time `json:"stcw_expiry"`
	ENG1           *bool      `json:"eng1"`
	ENG1Expiry     *time.Time `json:"eng1_expiry"`
	B1B2Visa       *bool      `json:"b1b2_visa"`
	B1B2Expiry     *time.Time `json:"b1b2_expiry"`
	SchengenVisa   *bool      `json:"schengen_visa"`
	SchengenExpiry *time.Time `json:"schengen_expiry"`

	// Checklist is the desired credential set, reconciled against
	// certification_entries on every save of this section.
	Checklist []DesiredCertification `json:"checklist"`
}

// CircumstanceSection — step 4.
type CircumstanceSection struct {
	Smoker         *bool   `json:"smoker"`
	VisibleTattoos *bool   `json:"visible_tattoos"`
	MaritalStatus  *string `json:"marital_status"`
}
