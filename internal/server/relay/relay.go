// Package relay mirrors confirmed local changes to the external CRM.
// The relay is strictly best-effort: it runs detached from the save path,
// failures are logged and never reach the coordinator or the user, and
// nothing is retried inline. The local store stays the source of truth.
package relay

import (
	"context"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

// Relay accepts the fields of one successfully persisted section.
// Implementations must never block the caller for long and must swallow
// their own errors.
type Relay interface {
	Relay(profileID uuid.UUID, section models.Section, fields map[string]any)
	Close() error
}

// NoopRelay logs what would have been mirrored and does nothing else. Used
// when no CRM credentials are configured and in tests.
type NoopRelay struct {
	logger logging.Logger
}

func NewNoopRelay(l logging.Logger) *NoopRelay {
	return &NoopRelay{logger: l.With("module", "relay")}
}

func (r *NoopRelay) Relay(profileID uuid.UUID, section models.Section, fields map[string]any) {
	r.logger.Info(context.Background(), "relay disabled, skipping mirror",
		"profile_id", profileID, "section", section, "fields", len(fields))
}

func (r *NoopRelay) Close() error { return nil }
