package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/baustructura/bau-geo/internal/geocode"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/route"
	"github.com/baustructura/bau-geo/internal/storage"
)

// Session is one map editing session. Its mutex serialises gestures the way
// a UI event loop would; the surface and store behind it are never touched
// without it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	name     string
	routeID  string
	surface  *mapview.Surface
	resolver *geocode.Resolver
	lastUsed time.Time
	publish  func(Event)
}

// SessionInfo summarises a session for listings.
type SessionInfo struct {
	ID             string    `json:"id" doc:"Session ID" example:"5f0c3a5e-8d8e-4d7e-9b1a-2c6f1e0a7b42"`
	Name           string    `json:"name,omitempty" doc:"Route name"`
	RouteID        string    `json:"routeId,omitempty" doc:"Snapshot the session was opened from or saved to"`
	MarkerCount    int       `json:"markerCount"`
	DistanceMeters float64   `json:"distanceMeters"`
	Mode           string    `json:"mode" enum:"view,add"`
	PendingSearch  string    `json:"pendingSearch,omitempty" doc:"Address lookup still in flight"`
	CreatedAt      time.Time `json:"createdAt"`
	LastUsed       time.Time `json:"lastUsed"`
}

func newSession(id, name string, gw geocode.Gateway, publish func(Event)) *Session {
	now := time.Now()
	if publish == nil {
		publish = func(Event) {}
	}
	return &Session{
		ID:        id,
		CreatedAt: now,
		name:      name,
		surface:   mapview.NewSurface(marker.NewStore()),
		resolver:  geocode.NewResolver(gw),
		lastUsed:  now,
		publish:   publish,
	}
}

// read runs fn under the session lock.
func (s *Session) read(fn func(*mapview.Surface)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	fn(s.surface)
}

// mutate runs fn under the session lock and publishes ev when fn succeeds.
func (s *Session) mutate(ev Event, fn func(*mapview.Surface) error) error {
	s.mu.Lock()
	s.lastUsed = time.Now()
	err := fn(s.surface)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	ev.Session = s.ID
	s.publish(ev)
	return nil
}

func (s *Session) Info() SessionInfo {
	var info SessionInfo
	s.read(func(sf *mapview.Surface) {
		markers := sf.Store().List()
		info = SessionInfo{
			ID:             s.ID,
			Name:           s.name,
			RouteID:        s.routeID,
			MarkerCount:    len(markers),
			DistanceMeters: route.TotalDistance(markers),
			Mode:           string(sf.Mode()),
			CreatedAt:      s.CreatedAt,
			LastUsed:       s.lastUsed,
		}
	})
	if q, ok := s.resolver.Pending(); ok {
		info.PendingSearch = q
	}
	return info
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// View renders the surface.
func (s *Session) View() mapview.View {
	var v mapview.View
	s.read(func(sf *mapview.Surface) { v = sf.Render() })
	return v
}

func (s *Session) Markers() []marker.Marker {
	var out []marker.Marker
	s.read(func(sf *mapview.Surface) { out = sf.Store().List() })
	return out
}

func (s *Session) Marker(index int) (marker.Marker, error) {
	var (
		m   marker.Marker
		err error
	)
	s.read(func(sf *mapview.Surface) { m, err = sf.Store().Get(index) })
	return m, err
}

func (s *Session) Route() route.Summary {
	var sum route.Summary
	s.read(func(sf *mapview.Surface) { sum = route.Summarize(sf.Store().List()) })
	return sum
}

// Click handles a map click; see mapview.Surface.OnMapClick.
func (s *Session) Click(p marker.Position) (int, bool, error) {
	s.mu.Lock()
	s.lastUsed = time.Now()
	index, added, err := s.surface.OnMapClick(p)
	s.mu.Unlock()
	if err == nil && added {
		s.publish(Event{Resource: "markers", Action: "created", Session: s.ID, ID: strconv.Itoa(index)})
	}
	return index, added, err
}

// AddMarker appends a marker regardless of mode.
func (s *Session) AddMarker(p marker.Position, attrs marker.Attributes) (int, error) {
	index := -1
	err := s.mutate(Event{Resource: "markers", Action: "created"}, func(sf *mapview.Surface) error {
		var err error
		index, err = sf.AddMarker(p, attrs)
		return err
	})
	return index, err
}

// MoveMarker handles a drag end.
func (s *Session) MoveMarker(index int, p marker.Position) error {
	return s.mutate(Event{Resource: "markers", Action: "moved", ID: strconv.Itoa(index)}, func(sf *mapview.Surface) error {
		return sf.OnMarkerDragEnd(index, p)
	})
}

// UpdateMarker merges attrs into the marker at index without the edit form.
func (s *Session) UpdateMarker(index int, attrs marker.Attributes) error {
	return s.mutate(Event{Resource: "markers", Action: "updated", ID: strconv.Itoa(index)}, func(sf *mapview.Surface) error {
		return sf.Store().UpdateAttributes(index, attrs)
	})
}

func (s *Session) RemoveMarker(index int) error {
	return s.mutate(Event{Resource: "markers", Action: "deleted", ID: strconv.Itoa(index)}, func(sf *mapview.Surface) error {
		return sf.RemoveMarker(index)
	})
}

// SelectMarker opens the edit form.
func (s *Session) SelectMarker(index int) (mapview.EditForm, error) {
	var form mapview.EditForm
	err := s.mutate(Event{Resource: "view", Action: "selected", ID: strconv.Itoa(index)}, func(sf *mapview.Surface) error {
		var err error
		form, err = sf.OnMarkerSelect(index)
		return err
	})
	return form, err
}

func (s *Session) SubmitEdit(attrs marker.Attributes) (int, error) {
	index := -1
	err := s.mutate(Event{Resource: "markers", Action: "updated"}, func(sf *mapview.Surface) error {
		var err error
		index, err = sf.SubmitEdit(attrs)
		return err
	})
	return index, err
}

func (s *Session) CancelEdit() {
	s.mutate(Event{Resource: "view", Action: "cancelled"}, func(sf *mapview.Surface) error {
		sf.CancelEdit()
		return nil
	})
}

func (s *Session) SetMode(m mapview.Mode) error {
	return s.mutate(Event{Resource: "view", Action: "mode"}, func(sf *mapview.Surface) error {
		return sf.SetMode(m)
	})
}

func (s *Session) SelectLoadClass(c marker.LoadClass) {
	s.mutate(Event{Resource: "view", Action: "class"}, func(sf *mapview.Surface) error {
		sf.SelectLoadClass(c)
		return nil
	})
}

func (s *Session) SetTileStatus(status mapview.TileStatus) {
	s.mutate(Event{Resource: "view", Action: "tiles"}, func(sf *mapview.Surface) error {
		sf.SetTileStatus(status)
		return nil
	})
}

// Optimize reorders the intermediate stops by nearest neighbour.
func (s *Session) Optimize() ([]int, error) {
	var order []int
	err := s.mutate(Event{Resource: "route", Action: "optimized"}, func(sf *mapview.Surface) error {
		var err error
		order, err = sf.OptimizeRoute()
		return err
	})
	return order, err
}

// SearchAndAdd geocodes query and appends the first candidate with the
// selected load class. The lookup runs without the session lock; the result
// is applied only if no newer search was started and the session is open.
func (s *Session) SearchAndAdd(ctx context.Context, query string) (int, geocode.Result, error) {
	index := -1
	res, err := s.resolver.Resolve(ctx, query, func(r geocode.Result) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastUsed = time.Now()
		var err error
		index, err = s.surface.AddMarker(
			marker.Position{Lat: r.Lat, Lng: r.Lng},
			marker.Attributes{
				Name:        marker.String(r.DisplayName),
				Street:      marker.String(r.Street),
				HouseNumber: marker.String(r.HouseNumber),
				PostalCode:  marker.String(r.PostalCode),
				City:        marker.String(r.City),
			})
		return err
	})
	if err != nil {
		return -1, geocode.Result{}, err
	}
	s.publish(Event{Resource: "markers", Action: "created", Session: s.ID, ID: strconv.Itoa(index)})
	return index, res, nil
}

// Import replaces all markers, closing any open form.
func (s *Session) Import(markers []marker.Marker) error {
	return s.mutate(Event{Resource: "markers", Action: "loaded"}, func(sf *mapview.Surface) error {
		if err := sf.Store().Replace(markers); err != nil {
			return err
		}
		sf.CancelEdit()
		return nil
	})
}

// Snapshot captures the markers for persistence.
func (s *Session) Snapshot(routeID, name string) storage.Snapshot {
	var snap storage.Snapshot
	s.read(func(sf *mapview.Surface) {
		markers := sf.Store().List()
		if name == "" {
			name = s.name
		}
		snap = storage.Snapshot{
			RouteID:        routeID,
			Name:           name,
			Markers:        markers,
			DistanceMeters: route.TotalDistance(markers),
			SavedAt:        time.Now().UTC(),
		}
	})
	return snap
}

func (s *Session) saved(routeID, name string) {
	s.mu.Lock()
	s.routeID = routeID
	if name != "" {
		s.name = name
	}
	s.mu.Unlock()
}

// defaultRouteID derives a route ID when the caller gave none.
func (s *Session) defaultRouteID(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.routeID != "" && name == "" {
		return s.routeID
	}
	if name == "" {
		name = s.name
	}
	if id := storage.Slug(name); id != "" {
		return id
	}
	return "route-" + s.ID[:8]
}

// hydrate replaces the markers with a stored snapshot.
func (s *Session) hydrate(snap storage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.surface.Store().Replace(snap.Markers); err != nil {
		return err
	}
	s.routeID = snap.RouteID
	s.name = snap.Name
	return nil
}

// close discards in-flight geocode results.
func (s *Session) close() {
	s.resolver.Close()
}
