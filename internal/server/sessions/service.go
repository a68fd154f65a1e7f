// Package sessions owns the lifetime of one editing session per profile:
// identity resolution on start, the autosave coordinator while the wizard is
// open, and the flush-and-teardown on end. Handlers talk to this service
// only; they never reach storage or the coordinator directly.
package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/autosave"
	"github.com/lighthouse-crew/profilesync/internal/server/certifications"
	"github.com/lighthouse-crew/profilesync/internal/server/identity"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
	"github.com/lighthouse-crew/profilesync/internal/server/relay"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/repomanager"
	"github.com/lighthouse-crew/profilesync/internal/server/statusbus"
)

// Service manages active editing sessions keyed by the authenticated subject.
// Identity is resolved exactly once, at session start; everything after that
// addresses the profile through the session.
type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *identity.Resolver
	reconciler  *certifications.Reconciler
	relay       relay.Relay
	bus         statusbus.Publisher
	logger      logging.Logger
	debounce    time.Duration

	mu     sync.Mutex
	active map[string]*session // auth subject -> session
}

type session struct {
	profileID uuid.UUID
	coord     *autosave.Coordinator
}

func NewService(db *sql.DB, rm repomanager.RepositoryManager, resolver *identity.Resolver,
	reconciler *certifications.Reconciler, rel relay.Relay, bus statusbus.Publisher,
	debounce time.Duration, logger logging.Logger) *Service {
	return &Service{
		db:          db,
		repomanager: rm,
		resolver:    resolver,
		reconciler:  reconciler,
		relay:       rel,
		bus:         bus,
		logger:      logger.With("module", "sessions"),
		debounce:    debounce,
		active:      make(map[string]*session),
	}
}

// StartResult carries everything the wizard needs to render its first step.
type StartResult struct {
	ProfileID uuid.UUID
	Snapshot  models.Snapshot
}

// Start resolves the principal to a profile, loads the stored state, and
// spins up the autosave coordinator. Starting again for the same subject
// flushes and replaces the previous session, so a re-opened wizard always
// resumes from what is actually stored.
func (s *Service) Start(ctx context.Context, principal models.Principal) (*StartResult, error) {

	profileID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}

	// the replaced session must land its pending edits before the baseline is
	// read, otherwise the re-opened wizard renders pre-flush state and can
	// overwrite the flush with it
	s.mu.Lock()
	prev := s.active[principal.AuthID]
	delete(s.active, principal.AuthID)
	s.mu.Unlock()

	if prev != nil {
		if err := prev.coord.Flush(ctx); err != nil {
			s.logger.Warn(ctx, "flush of replaced session failed", "profile_id", prev.profileID, "error", err)
		}
		prev.coord.Close()
	}

	snap, err := s.loadSnapshot(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", profileID, err)
	}

	coord := autosave.New(autosave.Config{
		ProfileID: profileID,
		Debounce:  s.debounce,
		Persist:   s.persistFuncs(profileID),
		OnSaved: func(section models.Section, snap models.Snapshot) {
			s.relay.Relay(profileID, section, relay.FieldsFor(section, snap))
		},
		Publish: func(info autosave.StatusInfo) {
			ev := statusbus.Event{
				ProfileID: info.ProfileID,
				Status:    string(info.Status),
				SavedAt:   info.SavedAt,
				At:        time.Now().UTC(),
			}
			if err := s.bus.Publish(context.Background(), ev); err != nil {
				s.logger.Warn(context.Background(), "status publish failed", "error", err)
			}
		},
		Baseline: snap,
		Logger:   s.logger,
	})

	s.mu.Lock()
	s.active[principal.AuthID] = &session{profileID: profileID, coord: coord}
	s.mu.Unlock()

	s.logger.Info(ctx, "session started", "auth_id", principal.AuthID, "profile_id", profileID)

	return &StartResult{ProfileID: profileID, Snapshot: snap}, nil
}

// Change submits the latest full-form snapshot to the session's coordinator.
func (s *Service) Change(authID string, snap models.Snapshot) error {
	sess, err := s.lookup(authID)
	if err != nil {
		return err
	}
	sess.coord.Change(snap)
	return nil
}

// Flush persists all pending edits immediately, blocking until done. Used on
// step navigation, where stale data behind the user is not acceptable.
func (s *Service) Flush(ctx context.Context, authID string) error {
	sess, err := s.lookup(authID)
	if err != nil {
		return err
	}
	return sess.coord.Flush(ctx)
}

// Status returns the session's current save indicator.
func (s *Service) Status(authID string) (autosave.StatusInfo, error) {
	sess, err := s.lookup(authID)
	if err != nil {
		return autosave.StatusInfo{}, err
	}
	return sess.coord.Status(), nil
}

// ProfileID returns the profile the session is bound to.
func (s *Service) ProfileID(authID string) (uuid.UUID, error) {
	sess, err := s.lookup(authID)
	if err != nil {
		return uuid.Nil, err
	}
	return sess.profileID, nil
}

// End flushes and tears down the subject's session. A missing session is not
// an error: ending twice must be safe for the client.
func (s *Service) End(ctx context.Context, authID string) error {
	s.mu.Lock()
	sess, ok := s.active[authID]
	delete(s.active, authID)
	s.mu.Unlock()

	if !ok {
		return nil
	}

	err := sess.coord.Flush(ctx)
	sess.coord.Close()
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "session ended", "auth_id", authID, "profile_id", sess.profileID)
	return nil
}

// closeFlushTimeout bounds the per-session flush on shutdown so a wedged
// store cannot stall the exit.
const closeFlushTimeout = 5 * time.Second

// CloseAll flushes and tears down every active session. Shutdown path only;
// each flush is best effort under a bounded timeout, so edits still inside
// the debounce window are saved when the store cooperates.
func (s *Service) CloseAll() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.active))
	for _, sess := range s.active {
		sessions = append(sessions, sess)
	}
	s.active = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		ctx, cancel := context.WithTimeout(context.Background(), closeFlushTimeout)
		if err := sess.coord.Flush(ctx); err != nil {
			s.logger.Warn(ctx, "flush on shutdown failed", "profile_id", sess.profileID, "error", err)
		}
		cancel()
		sess.coord.Close()
	}
}

func (s *Service) lookup(authID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[authID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	return sess, nil
}

// loadSnapshot reads the profile row and folds the certification checklist
// rows into the certifications section, producing the session baseline.
func (s *Service) loadSnapshot(ctx context.Context, profileID uuid.UUID) (models.Snapshot, error) {
	profileRepo := s.repomanager.Profiles(s.db)
	entryRepo := s.repomanager.CertificationEntries(s.db)

	profile, err := profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return models.Snapshot{}, err
	}

	entries, err := entryRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.SnapshotOf(profile)
	snap.Certification.Checklist = make([]models.DesiredCertification, 0, len(entries))
	for _, e := range entries {
		snap.Certification.Checklist = append(snap.Certification.Checklist, models.DesiredCertification{
			Type:   e.CertType,
			Has:    true,
			Expiry: e.Expiry,
			Label:  e.Label,
		})
	}
	return snap, nil
}

// persistFuncs binds one storage call per section. The certifications section
// is the composite one: flag columns on the profile row plus the checklist
// reconciliation in a single logical save.
func (s *Service) persistFuncs(profileID uuid.UUID) map[models.Section]autosave.PersistFunc {
	profileRepo := s.repomanager.Profiles(s.db)

	return map[models.Section]autosave.PersistFunc{
		models.SectionPersonal: func(ctx context.Context, snap models.Snapshot) error {
			return profileRepo.UpdatePersonal(ctx, profileID, snap.Personal)
		},
		models.SectionProfessional: func(ctx context.Context, snap models.Snapshot) error {
			return profileRepo.UpdateProfessional(ctx, profileID, snap.Professional)
		},
		models.SectionCertifications: func(ctx context.Context, snap models.Snapshot) error {
			if err := profileRepo.UpdateCertificationFlags(ctx, profileID, snap.Certification); err != nil {
				return err
			}
			return s.reconciler.Reconcile(ctx, profileID, snap.Certification.Checklist)
		},
		models.SectionCircumstances: func(ctx context.Context, snap models.Snapshot) error {
			return profileRepo.UpdateCircumstances(ctx, profileID, snap.Circumstance)
		},
	}
}
