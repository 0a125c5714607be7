// Package storage persists marker route snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/baustructura/bau-geo/internal/marker"
)

var (
	// ErrNotFound is returned when no snapshot exists for a route ID.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidID is returned for route IDs that are not URL and file safe.
	ErrInvalidID = errors.New("invalid route id")
)

// Snapshot is the saved marker sequence of one route.
type Snapshot struct {
	RouteID        string          `json:"routeId" doc:"Route identifier" example:"ring-ost"`
	Name           string          `json:"name,omitempty" doc:"Display name" example:"Ring Ost"`
	Markers        []marker.Marker `json:"markers" doc:"Markers in route order"`
	DistanceMeters float64         `json:"distanceMeters" doc:"Route length when saved"`
	SavedAt        time.Time       `json:"savedAt" doc:"Save time (UTC)"`
}

// Info describes a snapshot without its markers.
type Info struct {
	RouteID        string    `json:"routeId" example:"ring-ost"`
	Name           string    `json:"name,omitempty" example:"Ring Ost"`
	MarkerCount    int       `json:"markerCount"`
	DistanceMeters float64   `json:"distanceMeters"`
	SavedAt        time.Time `json:"savedAt"`
}

func (s Snapshot) Info() Info {
	return Info{
		RouteID:        s.RouteID,
		Name:           s.Name,
		MarkerCount:    len(s.Markers),
		DistanceMeters: s.DistanceMeters,
		SavedAt:        s.SavedAt,
	}
}

// Backend stores snapshots keyed by route ID. Save replaces an existing
// snapshot with the same ID.
type Backend interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, routeID string) (Snapshot, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, routeID string) error
	Close() error
}

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidateID checks that id is a lowercase slug of at most 64 characters.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Slug derives a route ID from a display name.
func Slug(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = strings.NewReplacer(" ", "-", "ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss").Replace(id)
	// Remove any characters that aren't alphanumeric, dash or underscore
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	out := strings.Trim(result.String(), "-_")
	if len(out) > 64 {
		out = strings.Trim(out[:64], "-_")
	}
	return out
}

// normalize validates snap before it is written.
func normalize(snap Snapshot) (Snapshot, error) {
	if err := ValidateID(snap.RouteID); err != nil {
		return Snapshot{}, err
	}
	for i, m := range snap.Markers {
		if err := m.Position.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("marker %d: %w", i, err)
		}
	}
	if snap.Markers == nil {
		snap.Markers = []marker.Marker{}
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	snap.SavedAt = snap.SavedAt.UTC().Truncate(time.Microsecond)
	return snap, nil
}

// sortInfos orders newest first, then by ID.
func sortInfos(infos []Info) {
	slices.SortFunc(infos, func(a, b Info) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return strings.Compare(a.RouteID, b.RouteID)
	})
}
