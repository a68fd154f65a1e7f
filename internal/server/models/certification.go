package models

import (
	"time"

	"github.com/google/uuid"
)

// CertificationEntry is one persisted credential row, keyed by
// (profile id, cert type). A row only exists while the candidate holds the
// credential: "does not have it" is represented by absence, not by a flag.
type CertificationEntry struct {
	ProfileID uuid.UUID
	CertType  string
	Expiry    *time.Time
	Label     *string // free text for custom/"other" credential types
	UpdatedAt time.Time
}

// DesiredCertification is the API-boundary variant of one checklist item.
// Has=false asks the reconciler to remove the row; the row-existence encoding
// never leaks past the reconciler.
type DesiredCertification struct {
	Type   string     `json:"type"`
	Has    bool       `json:"has"`
	Expiry *time.Time `json:"expiry,omitempty"`
	Label  *string    `json:"label,omitempty"`
}
