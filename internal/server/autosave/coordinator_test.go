package autosave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

const testDebounce = 40 * time.Millisecond

// sectionRecorder counts persistence calls per section and remembers the
// snapshot each call received.
type sectionRecorder struct {
	mu    sync.Mutex
	calls map[models.Section]int
	last  map[models.Section]models.Snapshot
	fail  map[models.Section]error
}

func newSectionRecorder() *sectionRecorder {
	return &sectionRecorder{
		calls: map[models.Section]int{},
		last:  map[models.Section]models.Snapshot{},
		fail:  map[models.Section]error{},
	}
}

func (r *sectionRecorder) persistFuncs() map[models.Section]PersistFunc {
	m := map[models.Section]PersistFunc{}
	for _, sec := range models.Sections() {
		sec := sec
		m[sec] = func(ctx context.Context, snap models.Snapshot) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			if err := r.fail[sec]; err != nil {
				return err
			}
			r.calls[sec]++
			r.last[sec] = snap
			return nil
		}
	}
	return m
}

func (r *sectionRecorder) callCount(sec models.Section) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[sec]
}

func (r *sectionRecorder) lastSnapshot(sec models.Section) models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last[sec]
}

func (r *sectionRecorder) failSection(sec models.Section, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, sec)
		return
	}
	r.fail[sec] = err
}

type savedRecorder struct {
	mu       sync.Mutex
	sections []models.Section
}

func (r *savedRecorder) hook(section models.Section, snap models.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, section)
}

func (r *savedRecorder) seen() []models.Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Section(nil), r.sections...)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func baseline() models.Snapshot {
	return models.Snapshot{
		Personal: models.PersonalSection{FirstName: "Maya", LastName: "Santos", Email: "maya@example.com"},
	}
}

func newTestCoordinator(t *testing.T, rec *sectionRecorder, saved *savedRecorder) *Coordinator {
	t.Helper()
	cfg := Config{
		ProfileID: uuid.New(),
		Debounce:  testDebounce,
		Persist:   rec.persistFuncs(),
		Baseline:  baseline(),
		Logger:    testLogger(),
	}
	if saved != nil {
		cfg.OnSaved = saved.hook
	}
	c := New(cfg)
	t.Cleanup(c.Close)
	return c
}

func TestCoordinator_NoOpChangeNeverPersists(t *testing.T) {
	rec := newSectionRecorder()
	c := newTestCoordinator(t, rec, nil)

	c.Change(baseline())
	time.Sleep(3 * testDebounce)

	for _, sec := range models.Sections() {
		assert.Equal(t, 0, rec.callCount(sec), "section %s", sec)
	}
}

func TestCoordinator_DebouncedBackgroundSave(t *testing.T) {
	rec := newSectionRecorder()
	c := newTestCoordinator(t, rec, nil)

	snap := baseline()
	snap.Personal.Phone = "+351 912 000 000"
	c.Change(snap)

	require.Eventually(t, func() bool {
		return rec.callCount(models.SectionPersonal) == 1
	}, time.Second, 5*time.Millisecond)

	// only the dirty section was written
	assert.Equal(t, 0, rec.callCount(models.SectionProfessional))
	assert.Equal(t, snap, rec.lastSnapshot(models.SectionPersonal))

	st := c.Status()
	assert.Equal(t, StatusSaved, st.Status)
	require.NotNil(t, st.SavedAt)
}

func TestCoordinator_TenRapidChangesOneNavigationOneFlush(t *testing.T) {
	rec := newSectionRecorder()
	c := newTestCoordinator(t, rec, nil)

	var snap models.Snapshot
	for i := 0; i < 10; i++ {
		snap = baseline()
		snap.Personal.City = "Antibes"
		snap.Professional.Notes = string(rune('a' + i))
		c.Change(snap)
	}

	require.NoError(t, c.Flush(context.Background()))

	// the flush-now cancelled the pending timer: waiting out the debounce
	// window must not produce a second save
	time.Sleep(3 * testDebounce)

	assert.Equal(t, 1, rec.callCount(models.SectionPersonal))
	assert.Equal(t, 1, rec.callCount(models.SectionProfessional))
	assert.Equal(t, snap, rec.lastSnapshot(models.SectionProfessional), "flush must carry the final state")
}

func TestCoordinator_PartialFailureIsolation(t *testing.T) {
	rec := newSectionRecorder()
	saved := &savedRecorder{}
	c := newTestCoordinator(t, rec, saved)
	rec.failSection(models.SectionProfessional, errors.New("connection reset"))

	snap := baseline()
	snap.Personal.City = "Palma"
	snap.Professional.PrimaryPosition = "Chief Stewardess"
	snap.Circumstance.Smoker = boolPtr(false)
	c.Change(snap)

	err := c.Flush(context.Background())
	require.ErrorIs(t, err, common.ErrPersistenceFailed)
	assert.Equal(t, StatusError, c.Status().Status)

	// successful sections were written and relayed, the failed one was not
	assert.Equal(t, 1, rec.callCount(models.SectionPersonal))
	assert.Equal(t, 1, rec.callCount(models.SectionCircumstances))
	assert.Equal(t, 0, rec.callCount(models.SectionProfessional))
	assert.NotContains(t, saved.seen(), models.SectionProfessional,
		"relay hook must never fire for a failed section")

	// retry touches only the failed section
	rec.failSection(models.SectionProfessional, nil)
	require.NoError(t, c.Flush(context.Background()))

	assert.Equal(t, 1, rec.callCount(models.SectionPersonal), "already-saved section must not be re-written")
	assert.Equal(t, 1, rec.callCount(models.SectionProfessional))
	assert.Equal(t, StatusSaved, c.Status().Status)
}

func TestCoordinator_ErrorIsNotSticky(t *testing.T) {
	rec := newSectionRecorder()
	c := newTestCoordinator(t, rec, nil)
	rec.failSection(models.SectionPersonal, errors.New("timeout"))

	snap := baseline()
	snap.Personal.City = "Monaco"
	c.Change(snap)
	require.Error(t, c.Flush(context.Background()))

	rec.failSection(models.SectionPersonal, nil)
	snap.Personal.City = "Nice"
	c.Change(snap)

	require.Eventually(t, func() bool {
		return c.Status().Status == StatusSaved
	}, time.Second, 5*time.Millisecond, "a new change after an error must re-arm the debounce")
	assert.Equal(t, "Nice", rec.lastSnapshot(models.SectionPersonal).Personal.City)
}

func TestCoordinator_RevertBeforeTimerFiresSavesNothing(t *testing.T) {
	rec := newSectionRecorder()
	c := newTestCoordinator(t, rec, nil)

	snap := baseline()
	snap.Personal.City = "Genoa"
	c.Change(snap)
	c.Change(baseline()) // user toggles the field back

	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, rec.callCount(models.SectionPersonal))
	assert.Equal(t, StatusSaved, c.Status().Status)
}

func TestCoordinator_FlushWithNothingDirtyIsANoOp(t *testing.T) {
	rec := newSectionRecorder()
	c := newTestCoordinator(t, rec, nil)

	require.NoError(t, c.Flush(context.Background()))
	for _, sec := range models.Sections() {
		assert.Equal(t, 0, rec.callCount(sec))
	}
}

func TestCoordinator_StatusTransitionsArePublished(t *testing.T) {
	rec := newSectionRecorder()

	var mu sync.Mutex
	var published []Status

	cfg := Config{
		ProfileID: uuid.New(),
		Debounce:  testDebounce,
		Persist:   rec.persistFuncs(),
		Baseline:  baseline(),
		Logger:    testLogger(),
		Publish: func(info StatusInfo) {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, info.Status)
		},
	}
	c := New(cfg)
	t.Cleanup(c.Close)

	snap := baseline()
	snap.Personal.City = "Cannes"
	c.Change(snap)
	require.NoError(t, c.Flush(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Status{StatusSaving, StatusSaved}, published)
}

func boolPtr(b bool) *bool { return &b }
