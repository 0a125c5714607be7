package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

const defaultUserAgent = "bau-geo/1.0"

// Nominatim searches addresses via OpenStreetMap Nominatim.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Road        string `json:"road"`
		Pedestrian  string `json:"pedestrian"`
		HouseNumber string `json:"house_number"`
		Postcode    string `json:"postcode"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
	} `json:"address"`
}

func (n *Nominatim) Search(ctx context.Context, query string) ([]Result, error) {
	base := n.BaseURL
	if base == "" {
		base = DefaultNominatimURL
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("countrycodes", "de")
	params.Set("accept-language", "de")
	params.Set("limit", "5")
	u := fmt.Sprintf("%s/search?%s", strings.TrimRight(base, "/"), params.Encode())

	ua := n.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	var places []nominatimPlace
	if err := getJSON(ctx, n.Client, u, ua, &places); err != nil {
		return nil, wrap("nominatim", query, err)
	}

	results := make([]Result, 0, len(places))
	for _, p := range places {
		lat, err1 := strconv.ParseFloat(p.Lat, 64)
		lng, err2 := strconv.ParseFloat(p.Lon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		results = append(results, Result{
			Lat:         lat,
			Lng:         lng,
			DisplayName: p.DisplayName,
			Street:      firstNonEmpty(p.Address.Road, p.Address.Pedestrian),
			HouseNumber: p.Address.HouseNumber,
			PostalCode:  p.Address.Postcode,
			City:        firstNonEmpty(p.Address.City, p.Address.Town, p.Address.Village),
		})
	}
	if len(results) == 0 {
		return nil, &Error{Provider: "nominatim", Query: query, Err: ErrNoResults}
	}
	return results, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type statusError int

func (s statusError) Error() string { return fmt.Sprintf("provider returned %d", int(s)) }

// getJSON fetches u and decodes the body into out.
func getJSON(ctx context.Context, client *http.Client, u, userAgent string, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return statusError(resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSON decode failed: %w", err)
	}
	return nil
}

func wrap(provider, query string, err error) *Error {
	e := &Error{Provider: provider, Query: query, Err: err}
	var status statusError
	if errors.As(err, &status) {
		e.Status = int(status)
	}
	return e
}
