// Package repomanager vends repository implementations bound to a DBTX, so
// services can run the same repository code on a plain connection or inside
// a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/lighthouse-crew/profilesync/internal/dbx"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/accounts"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/certentries"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/profiles"
)

// RepositoryManager is the factory seam for storage implementations.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	CertificationEntries(db dbx.DBTX) certentries.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
