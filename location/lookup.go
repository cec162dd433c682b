package location

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/vehicle"
)

// Lookup follows one ZIP input field. Every input takes a new token; a result is delivered
// only while its token is still the latest, so a late response for an old input is dropped.
// At most one upstream call is in flight per Lookup. Delivery runs outside the lock that
// guards the token, so a slow deliver never holds up Input.
type Lookup struct {
	resolver  *Resolver
	debouncer *Debouncer
	deliver   func(models.LocationResult)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	token  uint64
	closed bool
	wg     sync.WaitGroup

	flight sync.Mutex
	out    sync.Mutex
}

// NewLookup returns a lookup that reports results to deliver. deliver is never called
// concurrently with itself and must not call back into the Lookup.
func NewLookup(ctx context.Context, resolver *Resolver, wait time.Duration, deliver func(models.LocationResult)) *Lookup {
	ctx, cancel := context.WithCancel(ctx)
	return &Lookup{
		resolver:  resolver,
		debouncer: NewDebouncer(wait),
		deliver:   deliver,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Input records the current value of the field
func (l *Lookup) Input(zip string) {
	zip = strings.TrimSpace(zip)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.token++
	token := l.token

	if vehicle.ValidZip(zip) {
		l.debouncer.Schedule(func() { l.fire(token, zip) })
		l.mu.Unlock()
		return
	}
	l.debouncer.Cancel()
	l.mu.Unlock()
	l.emit(token, models.LocationResult{Input: zip})
}

// Close stops pending work and waits for an in-flight lookup to return
func (l *Lookup) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.debouncer.Stop()
	l.cancel()
	l.wg.Wait()
}

func (l *Lookup) fire(token uint64, zip string) {
	l.mu.Lock()
	if l.closed || token != l.token {
		l.mu.Unlock()
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()
	defer l.wg.Done()

	l.flight.Lock()
	defer l.flight.Unlock()
	if !l.current(token) {
		return
	}

	loc, err := l.resolver.Resolve(l.ctx, zip)
	if err != nil {
		if l.current(token) {
			zap.S().Infow("zip lookup failed", "zip", zip, "error", err)
		}
		l.emit(token, models.LocationResult{Input: zip, Error: err.Error()})
		return
	}
	l.emit(token, models.LocationResult{Input: zip, Location: loc, ReadOnly: !loc.Empty()})
}

// emit delivers res if token is still the latest input. A newer input that arrives while
// res is being delivered is delivered after it.
func (l *Lookup) emit(token uint64, res models.LocationResult) {
	l.out.Lock()
	defer l.out.Unlock()
	if !l.current(token) {
		zap.S().Debugw("discarding stale zip lookup", "zip", res.Input)
		return
	}
	l.deliver(res)
}

func (l *Lookup) current(token uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && token == l.token
}
