// Package autosave implements the per-session coordinator that decides when
// and what to persist while the candidate edits the wizard. It debounces
// background saves, suppresses no-op writes, and exposes the blocking flush
// used on step navigation.
package autosave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

// Status is the entire save-state contract the wizard UI needs.
type Status string

const (
	StatusSaved  Status = "saved"
	StatusSaving Status = "saving"
	StatusError  Status = "error"
)

// StatusInfo is the user-visible save indicator.
type StatusInfo struct {
	ProfileID uuid.UUID  `json:"profile_id"`
	Status    Status     `json:"status"`
	SavedAt   *time.Time `json:"saved_at,omitempty"`
}

// DefaultDebounce is the window between the last edit and the background save.
const DefaultDebounce = 1500 * time.Millisecond

// PersistFunc writes one section of the snapshot to local storage.
type PersistFunc func(ctx context.Context, snap models.Snapshot) error

// Config wires one coordinator to its collaborators.
type Config struct {
	ProfileID uuid.UUID
	Debounce  time.Duration

	// Persist holds one persistence call per section. A flush runs the dirty
	// subset concurrently and joins them before advancing.
	Persist map[models.Section]PersistFunc

	// OnSaved fires after one section persisted successfully, with exactly
	// the snapshot that was written. This is the relay hook: it must never
	// fail the flush, so it has no error return.
	OnSaved func(section models.Section, snap models.Snapshot)

	// Publish receives every status transition (status bus hook). Optional.
	Publish func(info StatusInfo)

	// Baseline is the snapshot of the freshly loaded profile: the initial
	// "last flushed" state, so echoing the loaded values back is a no-op.
	Baseline models.Snapshot

	Logger logging.Logger
}

type changeCmd struct {
	snap models.Snapshot
}

type flushCmd struct {
	ctx  context.Context
	done chan error
}

type statusCmd struct {
	reply chan StatusInfo
}

// Coordinator is a single-goroutine actor. Field changes, the debounce timer,
// and navigation flushes are all serialized through its loop, which is what
// guarantees at most one in-flight flush and makes a cancelled timer unable
// to fire a save.
type Coordinator struct {
	cfg     Config
	logger  logging.Logger
	cmds    chan any
	stop    chan struct{}
	stopped chan struct{}
}

func New(cfg Config) *Coordinator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	c := &Coordinator{
		cfg:     cfg,
		logger:  cfg.Logger.With("module", "autosave", "profile_id", cfg.ProfileID),
		cmds:    make(chan any, 16),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Change submits a new full-form snapshot. Identical-to-flushed snapshots are
// suppressed inside the loop; different ones (re)arm the debounce timer.
func (c *Coordinator) Change(snap models.Snapshot) {
	select {
	case c.cmds <- changeCmd{snap: snap}:
	case <-c.stopped:
	}
}

// Flush cancels any pending timer and persists immediately, blocking the
// caller until the flush completes. This is the navigation escape hatch: the
// one operation that must not return before the data is safe.
func (c *Coordinator) Flush(ctx context.Context) error {
	done := make(chan error, 1)
	select {
	case c.cmds <- flushCmd{ctx: ctx, done: done}:
	case <-c.stopped:
		return common.ErrSessionNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current save indicator.
func (c *Coordinator) Status() StatusInfo {
	reply := make(chan StatusInfo, 1)
	select {
	case c.cmds <- statusCmd{reply: reply}:
		return <-reply
	case <-c.stopped:
		return StatusInfo{ProfileID: c.cfg.ProfileID, Status: StatusSaved}
	}
}

// Close stops the actor. Pending edits are not flushed: callers are expected
// to Flush before Close when they care, mirroring the navigation contract.
func (c *Coordinator) Close() {
	select {
	case <-c.stopped:
		return
	default:
	}
	close(c.stop)
	<-c.stopped
}

type loopState struct {
	current models.Snapshot
	flushed models.Snapshot
	status  StatusInfo

	timer  *time.Timer
	timerC <-chan time.Time
}

func (c *Coordinator) loop() {
	defer close(c.stopped)

	st := &loopState{
		current: c.cfg.Baseline,
		flushed: c.cfg.Baseline,
		status:  StatusInfo{ProfileID: c.cfg.ProfileID, Status: StatusSaved},
	}

	for {
		select {
		case cmd := <-c.cmds:
			switch cmd := cmd.(type) {
			case changeCmd:
				c.onChange(st, cmd.snap)
			case flushCmd:
				c.cancelTimer(st)
				cmd.done <- c.flush(cmd.ctx, st)
			case statusCmd:
				cmd.reply <- st.status
			}
		case <-st.timerC:
			st.timer = nil
			st.timerC = nil
			// background save: the outcome lands in the status indicator,
			// there is no caller to hand the error to
			_ = c.flush(context.Background(), st)
		case <-c.stop:
			c.cancelTimer(st)
			return
		}
	}
}

func (c *Coordinator) onChange(st *loopState, snap models.Snapshot) {
	st.current = snap
	if snap.Equal(st.flushed) {
		// toggling a field back to its stored value must not re-trigger
		return
	}
	c.armTimer(st)
}

func (c *Coordinator) armTimer(st *loopState) {
	c.cancelTimer(st)
	st.timer = time.NewTimer(c.cfg.Debounce)
	st.timerC = st.timer.C
}

func (c *Coordinator) cancelTimer(st *loopState) {
	if st.timer == nil {
		return
	}
	if !st.timer.Stop() {
		select {
		case <-st.timer.C:
		default:
		}
	}
	st.timer = nil
	st.timerC = nil
}

// flush persists every dirty section concurrently and joins them. The
// last-flushed snapshot advances per section on success only, so a partially
// failed flush retries just the failed sections on the next trigger while
// the whole snapshot still counts as unsaved.
func (c *Coordinator) flush(ctx context.Context, st *loopState) error {
	snap := st.current

	var dirty []models.Section
	for _, sec := range models.Sections() {
		if !snap.SectionEqual(st.flushed, sec) {
			dirty = append(dirty, sec)
		}
	}
	if len(dirty) == 0 {
		// nothing differs from the store; a previous error state is moot
		if st.status.Status != StatusSaved {
			c.setStatus(st, StatusSaved, st.status.SavedAt)
		}
		return nil
	}

	c.setStatus(st, StatusSaving, st.status.SavedAt)

	type sectionResult struct {
		section models.Section
		err     error
	}
	results := make([]sectionResult, len(dirty))

	var g errgroup.Group
	for i, sec := range dirty {
		i, sec := i, sec
		g.Go(func() error {
			persist, ok := c.cfg.Persist[sec]
			if !ok {
				results[i] = sectionResult{section: sec, err: fmt.Errorf("no persistence call for section %q", sec)}
				return nil
			}
			results[i] = sectionResult{section: sec, err: persist(ctx, snap)}
			return nil
		})
	}
	_ = g.Wait()

	var failed []models.Section
	for _, res := range results {
		if res.err != nil {
			c.logger.Error(ctx, "section save failed", "section", res.section, "error", res.err)
			failed = append(failed, res.section)
			continue
		}
		st.flushed.CopySection(snap, res.section)
		if c.cfg.OnSaved != nil {
			c.cfg.OnSaved(res.section, snap)
		}
	}

	if len(failed) > 0 {
		c.setStatus(st, StatusError, st.status.SavedAt)
		return fmt.Errorf("%w: sections %v", common.ErrPersistenceFailed, failed)
	}

	now := time.Now().UTC()
	c.setStatus(st, StatusSaved, &now)
	return nil
}

func (c *Coordinator) setStatus(st *loopState, status Status, savedAt *time.Time) {
	st.status = StatusInfo{ProfileID: c.cfg.ProfileID, Status: status, SavedAt: savedAt}
	if c.cfg.Publish != nil {
		c.cfg.Publish(st.status)
	}
}
