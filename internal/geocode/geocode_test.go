package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mapboxBody = `{
  "features": [{
    "center": [11.575382, 48.137108],
    "place_name": "Marienplatz 1, 80331 München, Deutschland",
    "text": "Marienplatz",
    "address": "1",
    "context": [
      {"id": "postcode.123", "text": "80331"},
      {"id": "place.456", "text": "München"},
      {"id": "country.789", "text": "Deutschland"}
    ]
  }]
}`

func TestMapbox_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Marienplatz 1 München.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("access_token"))
		assert.Equal(t, "de", r.URL.Query().Get("country"))
		assert.Equal(t, "de", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mapboxBody))
	}))
	defer srv.Close()

	m := &Mapbox{BaseURL: srv.URL, Token: "secret", Client: srv.Client()}
	results, err := m.Search(context.Background(), "Marienplatz 1 München")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.InDelta(t, 48.137108, r.Lat, 1e-9)
	assert.InDelta(t, 11.575382, r.Lng, 1e-9)
	assert.Equal(t, "Marienplatz", r.Street)
	assert.Equal(t, "1", r.HouseNumber)
	assert.Equal(t, "80331", r.PostalCode)
	assert.Equal(t, "München", r.City)
	assert.Equal(t, "Marienplatz 1, 80331 München, Deutschland", r.DisplayName)
}

func TestMapbox_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, e *Error)
	}{
		{"non-200", http.StatusUnauthorized, `{}`, func(t *testing.T, e *Error) {
			assert.Equal(t, http.StatusUnauthorized, e.Status)
		}},
		{"bad json", http.StatusOK, `{"features":`, nil},
		{"zero results", http.StatusOK, `{"features":[]}`, func(t *testing.T, e *Error) {
			assert.ErrorIs(t, e, ErrNoResults)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m := &Mapbox{BaseURL: srv.URL, Token: "t", Client: srv.Client()}
			_, err := m.Search(context.Background(), "Nirgendwo")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGeocode)

			var gerr *Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, "mapbox", gerr.Provider)
			if tt.check != nil {
				tt.check(t, gerr)
			}
		})
	}
}

func TestMapbox_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := &Mapbox{BaseURL: url, Token: "t"}
	_, err := m.Search(context.Background(), "Hauptstraße")
	assert.ErrorIs(t, err, ErrGeocode)
}

func TestNominatim_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Domplatz 1 Regensburg", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "bau-geo-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`[
		  {"lat": "49.0195", "lon": "12.0975", "display_name": "Dom St. Peter, Domplatz 1, Regensburg",
		   "address": {"road": "Domplatz", "house_number": "1", "postcode": "93047", "town": "Regensburg"}},
		  {"lat": "bogus", "lon": "12", "display_name": "skipped"}
		]`))
	}))
	defer srv.Close()

	n := &Nominatim{BaseURL: srv.URL, UserAgent: "bau-geo-test", Client: srv.Client()}
	results, err := n.Search(context.Background(), "Domplatz 1 Regensburg")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Domplatz", results[0].Street)
	assert.Equal(t, "Regensburg", results[0].City)
	assert.Equal(t, "93047", results[0].PostalCode)
	assert.InDelta(t, 49.0195, results[0].Lat, 1e-9)
}

func TestNominatim_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	n := &Nominatim{BaseURL: srv.URL, Client: srv.Client()}
	_, err := n.Search(context.Background(), "xyzzy")
	assert.ErrorIs(t, err, ErrGeocode)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestNew(t *testing.T) {
	gw, err := New(Config{Provider: "mapbox", Token: "tok"})
	require.NoError(t, err)
	assert.IsType(t, &Mapbox{}, gw)

	gw, err = New(Config{Provider: "mapbox"})
	require.NoError(t, err)
	assert.IsType(t, &Nominatim{}, gw)

	gw, err = New(Config{Provider: "none"})
	require.NoError(t, err)
	_, err = gw.Search(context.Background(), "Hauptstraße")
	assert.ErrorIs(t, err, ErrGeocode)

	_, err = New(Config{Provider: "bing"})
	assert.Error(t, err)
}

func TestNormalizeQuery(t *testing.T) {
	q, err := NormalizeQuery("  Haupt\tstraße   1 ")
	require.NoError(t, err)
	assert.Equal(t, "Haupt straße 1", q)

	_, err = NormalizeQuery("äö")
	assert.ErrorIs(t, err, ErrQueryTooShort)
}
