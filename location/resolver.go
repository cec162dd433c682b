// Package location resolves ZIP codes to city and state while the user types.
package location

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/vehicle"
)

// Geocoder looks up the city and state of a ZIP code
type Geocoder interface {
	CityStateByZip(ctx context.Context, zip string) (models.Location, error)
}

// Resolver turns a ZIP into a location. Concurrent lookups of the same ZIP share one
// upstream call. Results are not cached.
//
// The shared call does not run on any one caller's context: a caller that gives up
// returns ctx.Err() on its own, and the upstream call is cancelled once every caller
// waiting on it has gone.
type Resolver struct {
	geo   Geocoder
	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewResolver returns a resolver backed by geo
func NewResolver(geo Geocoder) *Resolver {
	return &Resolver{geo: geo, flights: make(map[string]*flight)}
}

// Resolve looks up zip. Anything other than 5 digits returns vehicle.ErrInvalidZip without
// calling the geocoder.
func (r *Resolver) Resolve(ctx context.Context, zip string) (models.Location, error) {
	zip = strings.TrimSpace(zip)
	if err := vehicle.ValidateZip(zip); err != nil {
		return models.Location{}, err
	}

	f := r.join(ctx, zip)
	defer r.leave(zip, f)

	ch := r.group.DoChan(zip, func() (interface{}, error) {
		return r.geo.CityStateByZip(f.ctx, zip)
	})
	select {
	case <-ctx.Done():
		return models.Location{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			zap.S().Debugw("coalesced zip lookup", "zip", zip)
		}
		if res.Err != nil {
			return models.Location{}, res.Err
		}
		return res.Val.(models.Location), nil
	}
}

func (r *Resolver) join(ctx context.Context, zip string) *flight {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[zip]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		r.flights[zip] = f
	}
	f.waiters++
	return f
}

// leave drops a waiter; the last one out cancels the upstream call and lets the next
// lookup of zip start fresh.
func (r *Resolver) leave(zip string, f *flight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if r.flights[zip] == f {
		delete(r.flights, zip)
	}
	r.group.Forget(zip)
}
