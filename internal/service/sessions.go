// Package service holds the editing sessions and their persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baustructura/bau-geo/internal/geocode"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/storage"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
)

// Options configures a SessionService.
type Options struct {
	IdleTimeout time.Duration
	MaxSessions int
}

// SessionService manages editing sessions.
type SessionService struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	store    storage.Backend
	geocoder geocode.Gateway
	tiles    *mapview.TileProvider
	bus      *EventBus
	log      zerolog.Logger
	opts     Options
}

// NewSessionService creates a new session service. tiles may be nil.
func NewSessionService(store storage.Backend, gw geocode.Gateway, tiles *mapview.TileProvider, bus *EventBus, log zerolog.Logger, opts Options) *SessionService {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 2 * time.Hour
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 100
	}
	if bus == nil {
		bus = NewEventBus()
	}
	return &SessionService{
		sessions: make(map[string]*Session),
		store:    store,
		geocoder: gw,
		tiles:    tiles,
		bus:      bus,
		log:      log.With().Str("component", "sessions").Logger(),
		opts:     opts,
	}
}

func (s *SessionService) Bus() *EventBus { return s.bus }

func (s *SessionService) Tiles() *mapview.TileProvider { return s.tiles }

// Create opens an empty session.
func (s *SessionService) Create(name string) (*Session, error) {
	s.Cleanup(time.Now())

	sess := newSession(uuid.New().String(), name, s.geocoder, s.bus.Publish)
	if s.tiles != nil {
		if status := s.tiles.Status(); status != mapview.TilesLoading {
			sess.surface.SetTileStatus(status)
		}
	}

	s.mu.Lock()
	if len(s.sessions) >= s.opts.MaxSessions {
		s.mu.Unlock()
		sess.close()
		return nil, fmt.Errorf("%w: limit %d", ErrTooManySessions, s.opts.MaxSessions)
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Info().Str("session", sess.ID).Str("name", name).Msg("session created")
	s.bus.Publish(Event{Resource: "sessions", Action: "created", ID: sess.ID})
	return sess, nil
}

// Get returns a session by ID.
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// List returns all sessions, oldest first.
func (s *SessionService) List() []SessionInfo {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}
	slices.SortFunc(infos, func(a, b SessionInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return infos
}

// Delete closes a session. Pending geocode results for it are discarded.
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.close()
	s.log.Info().Str("session", id).Msg("session closed")
	s.bus.Publish(Event{Resource: "sessions", Action: "deleted", ID: id})
	return nil
}

// Cleanup closes sessions idle since before now minus the idle timeout and
// returns how many were closed.
func (s *SessionService) Cleanup(now time.Time) int {
	cutoff := now.Add(-s.opts.IdleTimeout)

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.close()
		s.log.Debug().Str("session", sess.ID).Msg("idle session removed")
		s.bus.Publish(Event{Resource: "sessions", Action: "expired", ID: sess.ID})
	}
	return len(stale)
}

// Run removes idle sessions every interval until ctx is done.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Cleanup(now); n > 0 {
				s.log.Info().Int("removed", n).Msg("idle sessions cleaned up")
			}
		}
	}
}

// Close closes every session.
func (s *SessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}
}

// Save stores the session's markers under routeID. An empty routeID is
// derived from name, then from the session's own name and ID.
func (s *SessionService) Save(ctx context.Context, sessionID, routeID, name string) (storage.Info, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return storage.Info{}, err
	}
	if routeID == "" {
		routeID = sess.defaultRouteID(name)
	}
	snap := sess.Snapshot(routeID, name)
	if err := s.store.Save(ctx, snap); err != nil {
		return storage.Info{}, err
	}
	sess.saved(snap.RouteID, snap.Name)

	s.log.Info().Str("session", sessionID).Str("route", snap.RouteID).Int("markers", len(snap.Markers)).Msg("route saved")
	s.bus.Publish(Event{Resource: "snapshots", Action: "saved", ID: snap.RouteID})
	return snap.Info(), nil
}

// Open starts a session hydrated from a stored snapshot.
func (s *SessionService) Open(ctx context.Context, routeID string) (*Session, error) {
	snap, err := s.store.Load(ctx, routeID)
	if err != nil {
		return nil, err
	}
	sess, err := s.Create(snap.Name)
	if err != nil {
		return nil, err
	}
	if err := sess.hydrate(snap); err != nil {
		s.Delete(sess.ID)
		return nil, fmt.Errorf("hydrate %s: %w", routeID, err)
	}
	s.bus.Publish(Event{Resource: "markers", Action: "loaded", Session: sess.ID, ID: routeID})
	return sess, nil
}

// Import stores a snapshot that did not come from a session, such as an
// uploaded export.
func (s *SessionService) Import(ctx context.Context, snap storage.Snapshot) (storage.Info, error) {
	if snap.RouteID == "" {
		snap.RouteID = storage.Slug(snap.Name)
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return storage.Info{}, err
	}
	s.log.Info().Str("route", snap.RouteID).Int("markers", len(snap.Markers)).Msg("route imported")
	s.bus.Publish(Event{Resource: "snapshots", Action: "saved", ID: snap.RouteID})
	return snap.Info(), nil
}

func (s *SessionService) Snapshots(ctx context.Context) ([]storage.Info, error) {
	return s.store.List(ctx)
}

func (s *SessionService) Snapshot(ctx context.Context, routeID string) (storage.Snapshot, error) {
	return s.store.Load(ctx, routeID)
}

func (s *SessionService) DeleteSnapshot(ctx context.Context, routeID string) error {
	if err := s.store.Delete(ctx, routeID); err != nil {
		return err
	}
	s.bus.Publish(Event{Resource: "snapshots", Action: "deleted", ID: routeID})
	return nil
}
