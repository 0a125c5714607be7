// Package mapview turns editing gestures into marker store mutations and
// projects the store into a renderable map view.
package mapview

import (
	"errors"
	"fmt"

	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/route"
)

// Mode decides what a click on the map does.
type Mode string

const (
	ModeView Mode = "view"
	ModeAdd  Mode = "add"
)

// TileStatus is the load state of the tile layer.
type TileStatus string

const (
	TilesLoading TileStatus = "loading"
	TilesReady   TileStatus = "ready"
	TilesFailed  TileStatus = "failed"
)

var (
	ErrInvalidMode = errors.New("invalid mode")
	ErrNotEditing  = errors.New("no marker is being edited")
)

// ParseMode accepts "view" and "add".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeView, ModeAdd:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Surface is the interactive map of one editing session. It owns the marker
// store and is not safe for concurrent use.
type Surface struct {
	store    *marker.Store
	mode     Mode
	selected marker.LoadClass
	editing  int
	tiles    TileStatus
}

// NewSurface wraps store. A nil store starts empty.
func NewSurface(store *marker.Store) *Surface {
	if store == nil {
		store = marker.NewStore()
	}
	return &Surface{
		store:    store,
		mode:     ModeView,
		selected: marker.None,
		editing:  -1,
		tiles:    TilesLoading,
	}
}

func (s *Surface) Store() *marker.Store { return s.store }

func (s *Surface) Mode() Mode { return s.mode }

func (s *Surface) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	s.mode = m
	return nil
}

// SelectedClass is the load class given to markers added by click or search.
func (s *Surface) SelectedClass() marker.LoadClass { return s.selected }

// SelectLoadClass sets the class for new markers. Unknown values become None.
func (s *Surface) SelectLoadClass(c marker.LoadClass) {
	if !c.Valid() {
		c = marker.None
	}
	s.selected = c
}

// OnMapClick adds a marker at p in add mode and does nothing in view mode.
func (s *Surface) OnMapClick(p marker.Position) (index int, added bool, err error) {
	if s.mode != ModeAdd {
		return -1, false, nil
	}
	index, err = s.store.Add(p, &marker.Attributes{LoadClass: marker.Class(s.selected)})
	if err != nil {
		return -1, false, err
	}
	return index, true, nil
}

// AddMarker appends a marker regardless of mode, using the selected class
// unless attrs sets one.
func (s *Surface) AddMarker(p marker.Position, attrs marker.Attributes) (int, error) {
	if attrs.LoadClass == nil {
		attrs.LoadClass = marker.Class(s.selected)
	}
	return s.store.Add(p, &attrs)
}

// OnMarkerDragEnd moves the dragged marker.
func (s *Surface) OnMarkerDragEnd(index int, p marker.Position) error {
	return s.store.UpdatePosition(index, p)
}

// EditForm is the attribute form of the selected marker.
type EditForm struct {
	Index  int           `json:"index"`
	Title  string        `json:"title"`
	Marker marker.Marker `json:"marker"`
}

// OnMarkerSelect opens the attribute form for index.
func (s *Surface) OnMarkerSelect(index int) (EditForm, error) {
	m, err := s.store.Get(index)
	if err != nil {
		return EditForm{}, err
	}
	s.editing = index
	return EditForm{Index: index, Title: m.Title(index), Marker: m}, nil
}

// Editing returns the open form, if any.
func (s *Surface) Editing() (EditForm, bool) {
	if s.editing < 0 {
		return EditForm{}, false
	}
	m, err := s.store.Get(s.editing)
	if err != nil {
		s.editing = -1
		return EditForm{}, false
	}
	return EditForm{Index: s.editing, Title: m.Title(s.editing), Marker: m}, true
}

// SubmitEdit merges attrs into the marker being edited and closes the form.
// The form stays open when the update fails.
func (s *Surface) SubmitEdit(attrs marker.Attributes) (int, error) {
	if s.editing < 0 {
		return -1, ErrNotEditing
	}
	index := s.editing
	if err := s.store.UpdateAttributes(index, attrs); err != nil {
		return -1, err
	}
	s.editing = -1
	return index, nil
}

// CancelEdit closes the form without changes.
func (s *Surface) CancelEdit() {
	s.editing = -1
}

// RemoveMarker deletes index, keeping an open form pointed at the same marker.
func (s *Surface) RemoveMarker(index int) error {
	if err := s.store.Remove(index); err != nil {
		return err
	}
	switch {
	case s.editing == index:
		s.editing = -1
	case s.editing > index:
		s.editing--
	}
	return nil
}

// OptimizeRoute reorders the intermediate stops by nearest neighbour and
// returns the applied order. Any open form is closed.
func (s *Surface) OptimizeRoute() ([]int, error) {
	order := route.Optimize(s.store.List())
	if err := s.store.Reorder(order); err != nil {
		return nil, err
	}
	s.editing = -1
	return order, nil
}

// TileStatus reports the last tile load signal.
func (s *Surface) TileStatus() TileStatus { return s.tiles }

// SetTileStatus records a tile load signal. Unknown values are ignored.
func (s *Surface) SetTileStatus(status TileStatus) {
	switch status {
	case TilesLoading, TilesReady, TilesFailed:
		s.tiles = status
	}
}
