// Package statusbus broadcasts save-status transitions so the wizard UI can
// show the saved/saving/error indicator without polling. The bus is a side
// channel: publishing failures are logged and never affect the save itself.
package statusbus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/logging"
)

// Event is one save-status transition for one profile.
type Event struct {
	ProfileID uuid.UUID  `json:"profile_id"`
	Status    string     `json:"status"`
	SavedAt   *time.Time `json:"saved_at,omitempty"`
	At        time.Time  `json:"at"`
}

// Publisher pushes status events to whoever renders the indicator.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// LogPublisher writes events to the log only. Used when no redis address is
// configured and in tests.
type LogPublisher struct {
	logger logging.Logger
}

func NewLogPublisher(l logging.Logger) *LogPublisher {
	return &LogPublisher{logger: l.With("module", "statusbus")}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	p.logger.Info(ctx, "save status", "profile_id", ev.ProfileID, "status", ev.Status)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
