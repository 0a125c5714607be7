package marker

import "fmt"

// Store is the ordered marker sequence of one editing session. Insertion order
// is the route order. Indices stay stable until a marker is removed, which
// shifts every later index down by one.
//
// Store is not safe for concurrent use; the owning session serialises access.
type Store struct {
	markers []Marker
	version uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a marker at p. attrs may be nil; the load class defaults to None.
func (s *Store) Add(p Position, attrs *Attributes) (int, error) {
	if err := p.Validate(); err != nil {
		return -1, err
	}
	m := Marker{Position: p, LoadClass: None}
	if attrs != nil {
		attrs.apply(&m)
	}
	s.markers = append(s.markers, m)
	s.version++
	return len(s.markers) - 1, nil
}

// UpdatePosition moves the marker at index. The marker is unchanged on error.
func (s *Store) UpdatePosition(index int, p Position) error {
	if err := s.check(index); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.markers[index].Position = p
	s.version++
	return nil
}

// UpdateAttributes merges the set fields of attrs into the marker at index.
func (s *Store) UpdateAttributes(index int, attrs Attributes) error {
	if err := s.check(index); err != nil {
		return err
	}
	attrs.apply(&s.markers[index])
	s.version++
	return nil
}

// Remove deletes the marker at index.
func (s *Store) Remove(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.markers = append(s.markers[:index], s.markers[index+1:]...)
	s.version++
	return nil
}

// List returns a copy of the markers in insertion order.
func (s *Store) List() []Marker {
	out := make([]Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Get returns the marker at index.
func (s *Store) Get(index int) (Marker, error) {
	if err := s.check(index); err != nil {
		return Marker{}, err
	}
	return s.markers[index], nil
}

// Len returns the number of markers.
func (s *Store) Len() int {
	return len(s.markers)
}

// Version increments on every successful mutation.
func (s *Store) Version() uint64 {
	return s.version
}

// Reorder rearranges the markers so that new position i holds the marker that
// was at order[i]. order must be a permutation of 0..Len()-1.
func (s *Store) Reorder(order []int) error {
	if len(order) != len(s.markers) {
		return fmt.Errorf("reorder: got %d indices for %d markers", len(order), len(s.markers))
	}
	seen := make([]bool, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(order) || seen[idx] {
			return fmt.Errorf("reorder: %v is not a permutation", order)
		}
		seen[idx] = true
	}
	next := make([]Marker, len(order))
	for i, idx := range order {
		next[i] = s.markers[idx]
	}
	s.markers = next
	s.version++
	return nil
}

// Replace swaps the whole sequence, e.g. when hydrating from a saved route.
// All positions are validated first; the store is untouched on error.
func (s *Store) Replace(markers []Marker) error {
	for i, m := range markers {
		if err := m.Position.Validate(); err != nil {
			return fmt.Errorf("marker %d: %w", i, err)
		}
	}
	next := make([]Marker, len(markers))
	copy(next, markers)
	for i := range next {
		if !next[i].LoadClass.Valid() {
			next[i].LoadClass = None
		}
	}
	s.markers = next
	s.version++
	return nil
}

func (s *Store) check(index int) error {
	if index < 0 || index >= len(s.markers) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.markers))
	}
	return nil
}
