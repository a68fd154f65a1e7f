package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

const relayRequestTimeout = 10 * time.Second

type payload struct {
	profileID uuid.UUID
	section   models.Section
	fields    map[string]any
}

// CRMRelay mirrors section updates to the CRM over HTTP. Updates are queued
// and sent by one background worker; a full queue drops the update rather
// than blocking a save.
type CRMRelay struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  logging.Logger

	queue      chan payload
	quit       chan struct{}
	workerDone chan struct{}
	closeOnce  sync.Once
}

func NewCRMRelay(baseURL, token string, queueSize int, l logging.Logger) *CRMRelay {
	if queueSize <= 0 {
		queueSize = 64
	}
	r := &CRMRelay{
		baseURL:    baseURL,
		token:      token,
		httpc:      &http.Client{Timeout: relayRequestTimeout},
		logger:     l.With("module", "relay"),
		queue:      make(chan payload, queueSize),
		quit:       make(chan struct{}),
		workerDone: make(chan struct{}),
	}
	go r.worker()
	return r
}

// Relay enqueues one mirror update. It never blocks and never reports
// failure to the caller: by the time the relay runs, the local save has
// already succeeded and its outcome is final.
func (r *CRMRelay) Relay(profileID uuid.UUID, section models.Section, fields map[string]any) {
	select {
	case r.queue <- payload{profileID: profileID, section: section, fields: fields}:
	case <-r.quit:
	default:
		r.logger.Warn(context.Background(), "relay queue full, dropping update",
			"profile_id", profileID, "section", section)
	}
}

// Close stops the worker. Queued updates that were not sent yet are dropped;
// the CRM is a best-effort mirror, not a durable outbox.
func (r *CRMRelay) Close() error {
	r.closeOnce.Do(func() {
		close(r.quit)
		<-r.workerDone
	})
	return nil
}

func (r *CRMRelay) worker() {
	defer close(r.workerDone)
	for {
		select {
		case p := <-r.queue:
			if err := r.send(p); err != nil {
				// logged and forgotten, never surfaced to the editing session
				r.logger.Error(context.Background(), "mirror update failed",
					"profile_id", p.profileID, "section", p.section, "error", err)
			}
		case <-r.quit:
			return
		}
	}
}

func (r *CRMRelay) send(p payload) error {
	ctx, cancel := context.WithTimeout(context.Background(), relayRequestTimeout)
	defer cancel()

	body, err := json.Marshal(p.fields)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", common.ErrRelayFailed, err)
	}

	url := fmt.Sprintf("%s/candidate/%s", r.baseURL, p.profileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRelayFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRelayFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", common.ErrRelayFailed, resp.StatusCode)
	}
	return nil
}
