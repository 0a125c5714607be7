// Package geocode turns free-text addresses into coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrGeocode matches every provider failure: network, status, decoding
	// and empty result sets.
	ErrGeocode = errors.New("geocode failed")
	// ErrNoResults is wrapped by Error when the provider found nothing.
	ErrNoResults = errors.New("no results")
	// ErrQueryTooShort is returned for queries below MinQueryLength.
	ErrQueryTooShort = errors.New("query too short")
)

// MinQueryLength is the shortest query sent to a provider, in runes.
const MinQueryLength = 3

// Result is one geocoding candidate.
type Result struct {
	Lat         float64 `json:"lat" example:"48.137154"`
	Lng         float64 `json:"lng" example:"11.576124"`
	DisplayName string  `json:"displayName" example:"Marienplatz 1, 80331 München, Deutschland"`
	Street      string  `json:"street,omitempty" example:"Marienplatz"`
	HouseNumber string  `json:"houseNumber,omitempty" example:"1"`
	PostalCode  string  `json:"postalCode,omitempty" example:"80331"`
	City        string  `json:"city,omitempty" example:"München"`
}

// Gateway resolves an address query into ordered candidates. Implementations
// return an *Error on failure.
type Gateway interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Error is a failed lookup.
type Error struct {
	Provider string
	Query    string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("geocode %s %q: status %d", e.Provider, e.Query, e.Status)
	}
	return fmt.Sprintf("geocode %s %q: %v", e.Provider, e.Query, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrGeocode.
func (e *Error) Is(target error) bool { return target == ErrGeocode }

// NormalizeQuery trims the query and rejects ones too short to search for.
func NormalizeQuery(query string) (string, error) {
	q := strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(q) < MinQueryLength {
		return "", fmt.Errorf("%w: %q", ErrQueryTooShort, query)
	}
	return q, nil
}

// Config selects and configures a provider.
type Config struct {
	Provider  string        // "mapbox", "nominatim" or "none"
	Token     string        // Mapbox access token
	BaseURL   string        // overrides the provider endpoint
	UserAgent string        // sent to Nominatim
	Timeout   time.Duration // per request
}

// New builds the configured gateway. An unconfigured Mapbox provider falls
// back to Nominatim, which needs no token.
func New(cfg Config) (Gateway, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		client.Timeout = 10 * time.Second
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "nominatim":
		return &Nominatim{BaseURL: cfg.BaseURL, UserAgent: cfg.UserAgent, Client: client}, nil
	case "mapbox":
		if cfg.Token == "" {
			return &Nominatim{UserAgent: cfg.UserAgent, Client: client}, nil
		}
		return &Mapbox{BaseURL: cfg.BaseURL, Token: cfg.Token, Client: client}, nil
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown geocode provider %q", cfg.Provider)
	}
}

// Disabled fails every lookup.
type Disabled struct{}

func (Disabled) Search(_ context.Context, query string) ([]Result, error) {
	return nil, &Error{Provider: "none", Query: query, Err: errors.New("geocoding disabled")}
}
