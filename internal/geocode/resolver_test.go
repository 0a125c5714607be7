package geocode

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedGateway answers each query only when the test releases it, ignoring
// cancellation so late responses can be simulated.
type gatedGateway struct {
	started chan string

	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedGateway() *gatedGateway {
	return &gatedGateway{started: make(chan string, 8), gates: map[string]chan struct{}{}}
}

func (g *gatedGateway) gate(q string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[q]
	if !ok {
		ch = make(chan struct{})
		g.gates[q] = ch
	}
	return ch
}

func (g *gatedGateway) release(q string) { close(g.gate(q)) }

func (g *gatedGateway) Search(_ context.Context, q string) ([]Result, error) {
	gate := g.gate(q)
	g.started <- q
	<-gate
	return []Result{{Lat: 48, Lng: 11, DisplayName: q}}, nil
}

type outcome struct {
	res Result
	err error
}

func resolveAsync(r *Resolver, q string, applied *[]string, mu *sync.Mutex) chan outcome {
	done := make(chan outcome, 1)
	go func() {
		res, err := r.Resolve(context.Background(), q, func(res Result) error {
			mu.Lock()
			defer mu.Unlock()
			*applied = append(*applied, res.DisplayName)
			return nil
		})
		done <- outcome{res, err}
	}()
	return done
}

func TestResolver_LastInitiatedWins(t *testing.T) {
	gw := newGatedGateway()
	r := NewResolver(gw)

	var mu sync.Mutex
	var applied []string

	a := resolveAsync(r, "Hauptstraße 1 Berlin", &applied, &mu)
	require.Equal(t, "Hauptstraße 1 Berlin", <-gw.started)
	b := resolveAsync(r, "Marienplatz München", &applied, &mu)
	require.Equal(t, "Marienplatz München", <-gw.started)

	gw.release("Marienplatz München")
	outB := <-b
	require.NoError(t, outB.err)
	assert.Equal(t, "Marienplatz München", outB.res.DisplayName)

	// A answers after B.
	gw.release("Hauptstraße 1 Berlin")
	outA := <-a
	assert.ErrorIs(t, outA.err, ErrStale)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Marienplatz München"}, applied)
}

func TestResolver_SupersededEvenWhenOlderReturnsFirst(t *testing.T) {
	gw := newGatedGateway()
	r := NewResolver(gw)
	var mu sync.Mutex
	var applied []string

	a := resolveAsync(r, "Altstadt Regensburg", &applied, &mu)
	<-gw.started
	b := resolveAsync(r, "Domplatz Regensburg", &applied, &mu)
	<-gw.started

	gw.release("Altstadt Regensburg")
	assert.ErrorIs(t, (<-a).err, ErrStale)

	gw.release("Domplatz Regensburg")
	require.NoError(t, (<-b).err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Domplatz Regensburg"}, applied)
}

func TestResolver_DuplicatePendingIsBusy(t *testing.T) {
	gw := newGatedGateway()
	r := NewResolver(gw)
	var mu sync.Mutex
	var applied []string

	a := resolveAsync(r, "Königsplatz Augsburg", &applied, &mu)
	<-gw.started

	q, ok := r.Pending()
	assert.True(t, ok)
	assert.Equal(t, "Königsplatz Augsburg", q)

	_, err := r.Resolve(context.Background(), "  Königsplatz   Augsburg ", nil)
	assert.ErrorIs(t, err, ErrBusy)

	gw.release("Königsplatz Augsburg")
	require.NoError(t, (<-a).err)

	_, ok = r.Pending()
	assert.False(t, ok)
}

func TestResolver_CloseDiscardsInFlight(t *testing.T) {
	gw := newGatedGateway()
	r := NewResolver(gw)
	var mu sync.Mutex
	var applied []string

	a := resolveAsync(r, "Hauptmarkt Nürnberg", &applied, &mu)
	<-gw.started
	r.Close()
	r.Close()

	gw.release("Hauptmarkt Nürnberg")
	assert.ErrorIs(t, (<-a).err, ErrClosed)

	_, err := r.Resolve(context.Background(), "Hauptmarkt Nürnberg", nil)
	assert.ErrorIs(t, err, ErrClosed)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, applied)
}

func TestResolver_ShortQuery(t *testing.T) {
	r := NewResolver(newGatedGateway())
	_, err := r.Resolve(context.Background(), " ab ", nil)
	assert.ErrorIs(t, err, ErrQueryTooShort)
}

type failingGateway struct{}

func (failingGateway) Search(_ context.Context, q string) ([]Result, error) {
	return nil, &Error{Provider: "test", Query: q, Err: errors.New("connection refused")}
}

func TestResolver_GatewayErrorDoesNotApply(t *testing.T) {
	r := NewResolver(failingGateway{})
	called := false
	_, err := r.Resolve(context.Background(), "Hauptstraße", func(Result) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrGeocode)
	assert.False(t, called)

	// a failed lookup does not block the next one
	_, err = r.Resolve(context.Background(), "Hauptstraße", nil)
	assert.NotErrorIs(t, err, ErrBusy)
}

func TestResolver_ApplyErrorIsReturned(t *testing.T) {
	gw := newGatedGateway()
	r := NewResolver(gw)
	boom := errors.New("store rejected")

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), "Rathausplatz", func(Result) error { return boom })
		done <- err
	}()
	<-gw.started
	gw.release("Rathausplatz")
	assert.ErrorIs(t, <-done, boom)
}
