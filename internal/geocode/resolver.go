package geocode

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBusy is returned when the same query is already in flight.
	ErrBusy = errors.New("geocode request already pending")
	// ErrStale is returned to a lookup that a newer one superseded.
	ErrStale = errors.New("geocode result superseded")
	// ErrClosed is returned once the resolver has been closed.
	ErrClosed = errors.New("geocode resolver closed")
)

// Resolver serialises lookups for one editing surface. The last initiated
// lookup wins: starting a new one cancels the one in flight, and a result
// that arrives after it was superseded, or after Close, is dropped.
type Resolver struct {
	gw Gateway

	mu      sync.Mutex
	seq     uint64
	pending string
	cancel  context.CancelFunc
	closed  bool
}

// NewResolver wraps gw.
func NewResolver(gw Gateway) *Resolver {
	return &Resolver{gw: gw}
}

// Resolve looks up query and, if the lookup is still the current one when it
// returns, calls apply with the first candidate. apply runs with the resolver
// locked, so it must not call back into the resolver.
func (r *Resolver) Resolve(ctx context.Context, query string, apply func(Result) error) (Result, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Result{}, ErrClosed
	}
	if r.cancel != nil && r.pending == q {
		r.mu.Unlock()
		return Result{}, ErrBusy
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	ticket := r.seq
	lookupCtx, cancel := context.WithCancel(ctx)
	r.pending = q
	r.cancel = cancel
	r.mu.Unlock()

	results, err := r.gw.Search(lookupCtx, q)

	r.mu.Lock()
	defer r.mu.Unlock()
	cancel()
	if ticket == r.seq {
		r.pending = ""
		r.cancel = nil
	}

	switch {
	case r.closed:
		return Result{}, ErrClosed
	case ticket != r.seq:
		return Result{}, ErrStale
	case err != nil:
		return Result{}, err
	case len(results) == 0:
		return Result{}, &Error{Provider: "gateway", Query: q, Err: ErrNoResults}
	}

	best := results[0]
	if apply != nil {
		if err := apply(best); err != nil {
			return Result{}, err
		}
	}
	return best, nil
}

// Pending reports the query in flight, if any.
func (r *Resolver) Pending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending, r.cancel != nil
}

// Close cancels the lookup in flight and rejects all later results.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		r.pending = ""
	}
}
