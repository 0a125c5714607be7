package marker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddThenListReturnsDefaultClass(t *testing.T) {
	positions := []Position{
		{Lat: 0, Lng: 0},
		{Lat: 90, Lng: 180},
		{Lat: -90, Lng: -180},
		{Lat: 48.137154, Lng: 11.576124},
	}

	s := NewStore()
	for i, p := range positions {
		idx, err := s.Add(p, nil)
		require.NoError(t, err)
		assert.Equal(t, i, idx)

		list := s.List()
		last := list[len(list)-1]
		assert.Equal(t, p, last.Position)
		assert.Equal(t, None, last.LoadClass)
	}
}

func TestStore_AddWithAttributes(t *testing.T) {
	s := NewStore()
	idx, err := s.Add(Position{Lat: 49.45, Lng: 11.07}, &Attributes{
		Street:    String("Königstraße"),
		City:      String("Nürnberg"),
		LoadClass: Class(Bk10),
	})
	require.NoError(t, err)

	m, err := s.Get(idx)
	require.NoError(t, err)
	assert.Equal(t, "Königstraße", m.Street)
	assert.Equal(t, "Nürnberg", m.City)
	assert.Equal(t, Bk10, m.LoadClass)
	assert.Empty(t, m.HouseNumber)
}

func TestStore_AddRejectsInvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
	}{
		{"lat too high", Position{Lat: 91, Lng: 0}},
		{"lat too low", Position{Lat: -90.0001, Lng: 0}},
		{"lng too high", Position{Lat: 0, Lng: 180.5}},
		{"lng too low", Position{Lat: 0, Lng: -181}},
		{"nan", Position{Lat: math.NaN(), Lng: 0}},
		{"inf", Position{Lat: 0, Lng: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			_, err := s.Add(tt.pos, nil)
			assert.ErrorIs(t, err, ErrInvalidCoordinate)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestStore_UpdatePositionInvalidLeavesMarkerUnchanged(t *testing.T) {
	s := NewStore()
	orig := Position{Lat: 48.137154, Lng: 11.576124}
	_, err := s.Add(orig, nil)
	require.NoError(t, err)
	v := s.Version()

	err = s.UpdatePosition(0, Position{Lat: 91, Lng: 0})
	require.ErrorIs(t, err, ErrInvalidCoordinate)

	m, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, orig, m.Position)
	assert.Equal(t, v, s.Version())
}

func TestStore_UpdatePosition(t *testing.T) {
	s := NewStore()
	_, _ = s.Add(Position{Lat: 1, Lng: 1}, nil)

	require.NoError(t, s.UpdatePosition(0, Position{Lat: 2, Lng: 3}))
	m, _ := s.Get(0)
	assert.Equal(t, Position{Lat: 2, Lng: 3}, m.Position)
}

func TestStore_IndexOutOfRange(t *testing.T) {
	s := NewStore()
	_, _ = s.Add(Position{Lat: 1, Lng: 1}, nil)

	assert.ErrorIs(t, s.UpdatePosition(1, Position{}), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.UpdatePosition(-1, Position{}), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.UpdateAttributes(5, Attributes{}), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Remove(1), ErrIndexOutOfRange)
	_, err := s.Get(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestStore_UpdateAttributesMergesOnlySetFields(t *testing.T) {
	s := NewStore()
	_, _ = s.Add(Position{Lat: 1, Lng: 1}, &Attributes{
		Street: String("Hauptstraße"),
		Notes:  String("Riss im Belag"),
	})

	require.NoError(t, s.UpdateAttributes(0, Attributes{LoadClass: Class(Bk32)}))

	m, _ := s.Get(0)
	assert.Equal(t, "Hauptstraße", m.Street)
	assert.Equal(t, "Riss im Belag", m.Notes)
	assert.Equal(t, Bk32, m.LoadClass)

	require.NoError(t, s.UpdateAttributes(0, Attributes{Notes: String("")}))
	m, _ = s.Get(0)
	assert.Empty(t, m.Notes)
}

func TestStore_RemovePreservesOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		_, err := s.Add(Position{Lat: float64(i), Lng: float64(i)}, nil)
		require.NoError(t, err)
	}

	require.NoError(t, s.Remove(2))

	list := s.List()
	require.Len(t, list, 4)
	want := []float64{0, 1, 3, 4}
	for i, m := range list {
		assert.Equal(t, want[i], m.Position.Lat)
	}
}

func TestStore_DuplicateCoordinatesAllowed(t *testing.T) {
	s := NewStore()
	p := Position{Lat: 10, Lng: 10}
	_, err := s.Add(p, nil)
	require.NoError(t, err)
	_, err = s.Add(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestStore_ListIsSnapshot(t *testing.T) {
	s := NewStore()
	_, _ = s.Add(Position{Lat: 1, Lng: 1}, nil)

	list := s.List()
	list[0].Street = "mutated"

	m, _ := s.Get(0)
	assert.Empty(t, m.Street)
}

func TestStore_Reorder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 3; i++ {
		_, _ = s.Add(Position{Lat: float64(i), Lng: 0}, nil)
	}

	require.NoError(t, s.Reorder([]int{2, 0, 1}))
	list := s.List()
	assert.Equal(t, 2.0, list[0].Position.Lat)
	assert.Equal(t, 0.0, list[1].Position.Lat)
	assert.Equal(t, 1.0, list[2].Position.Lat)

	assert.Error(t, s.Reorder([]int{0, 0, 1}))
	assert.Error(t, s.Reorder([]int{0, 1}))
	assert.Error(t, s.Reorder([]int{0, 1, 3}))
}

func TestStore_ReplaceValidatesFirst(t *testing.T) {
	s := NewStore()
	_, _ = s.Add(Position{Lat: 1, Lng: 1}, nil)

	err := s.Replace([]Marker{
		{Position: Position{Lat: 2, Lng: 2}},
		{Position: Position{Lat: 200, Lng: 2}},
	})
	require.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Replace([]Marker{
		{Position: Position{Lat: 2, Lng: 2}, LoadClass: LoadClass(99)},
	}))
	m, _ := s.Get(0)
	assert.Equal(t, None, m.LoadClass)
}

func TestStore_OutOfRangeClassBecomesNone(t *testing.T) {
	s := NewStore()
	idx, err := s.Add(Position{Lat: 1, Lng: 1}, &Attributes{LoadClass: Class(LoadClass(42))})
	require.NoError(t, err)
	m, _ := s.Get(idx)
	assert.Equal(t, None, m.LoadClass)

	require.NoError(t, s.UpdateAttributes(idx, Attributes{LoadClass: Class(Bk32)}))
	require.NoError(t, s.UpdateAttributes(idx, Attributes{LoadClass: Class(LoadClass(-3))}))
	m, _ = s.Get(idx)
	assert.Equal(t, None, m.LoadClass)
}

func TestMarker_Title(t *testing.T) {
	assert.Equal(t, "Hauptstraße 1", Marker{Street: "Hauptstraße", HouseNumber: "1"}.Title(0))
	assert.Equal(t, "Hauptstraße", Marker{Street: "Hauptstraße"}.Title(0))
	assert.Equal(t, "Marienplatz, München", Marker{Name: "Marienplatz, München"}.Title(0))
	assert.Equal(t, "Standort 3", Marker{}.Title(2))
	assert.Equal(t, "80331 München", Marker{PostalCode: "80331", City: "München"}.Locality())
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("48.137154, 11.576124")
	require.NoError(t, err)
	assert.Equal(t, Position{Lat: 48.137154, Lng: 11.576124}, p)

	for _, in := range []string{"48.1", "a,b", "48.1,11.5,3", "91,0", "0,181"} {
		_, err := ParsePosition(in)
		assert.ErrorIs(t, err, ErrInvalidCoordinate, in)
	}
}
