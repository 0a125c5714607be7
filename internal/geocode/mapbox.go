package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMapboxURL is the Mapbox forward geocoding endpoint.
const DefaultMapboxURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Mapbox searches German addresses via the Mapbox geocoding API.
type Mapbox struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type mapboxResponse struct {
	Features []struct {
		Center    []float64 `json:"center"`
		PlaceName string    `json:"place_name"`
		Text      string    `json:"text"`
		Address   string    `json:"address"`
		Context   []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"context"`
	} `json:"features"`
}

func (m *Mapbox) Search(ctx context.Context, query string) ([]Result, error) {
	base := m.BaseURL
	if base == "" {
		base = DefaultMapboxURL
	}
	u := fmt.Sprintf("%s/%s.json?access_token=%s&country=de&language=de",
		strings.TrimRight(base, "/"), url.PathEscape(query), url.QueryEscape(m.Token))

	var parsed mapboxResponse
	if err := getJSON(ctx, m.Client, u, "", &parsed); err != nil {
		return nil, wrap("mapbox", query, err)
	}

	results := make([]Result, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		if len(f.Center) != 2 {
			continue
		}
		r := Result{
			Lng:         f.Center[0],
			Lat:         f.Center[1],
			DisplayName: f.PlaceName,
			Street:      f.Text,
			HouseNumber: f.Address,
		}
		for _, c := range f.Context {
			switch {
			case strings.HasPrefix(c.ID, "postcode"):
				r.PostalCode = c.Text
			case strings.HasPrefix(c.ID, "place"):
				r.City = c.Text
			}
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		return nil, &Error{Provider: "mapbox", Query: query, Err: ErrNoResults}
	}
	return results, nil
}
