package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the internal record linking an authenticating principal to a
// profile. ProfileID is nullable: accounts created before their profile was
// linked (or never linked) are a normal state, not corruption.
type Account struct {
	ID        uuid.UUID
	AuthID    string
	Email     string
	ProfileID *uuid.UUID
	CreatedAt time.Time
}

// Principal is the read-only authenticated-actor handle supplied by the auth
// collaborator: an opaque auth identifier plus an optional contact address.
type Principal struct {
	AuthID string
	Email  string
}
