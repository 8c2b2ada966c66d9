package geo

import (
	"context"
	"errors"
	"sync"
)

var ErrPositionUnavailable = errors.New("position unavailable")

// Locator yields the user's current position. Implementations either answer
// with a position or fail with ErrPositionUnavailable.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coords, error)
}

// StaticLocator always answers with the same position.
type StaticLocator struct {
	Position Coords
}

func NewStaticLocator(lat, lng float64) *StaticLocator {
	return &StaticLocator{Position: NewCoords(lat, lng)}
}

func (s *StaticLocator) CurrentPosition(context.Context) (Coords, error) {
	return s.Position, nil
}

// UnavailableLocator never yields a position.
type UnavailableLocator struct{}

func (UnavailableLocator) CurrentPosition(context.Context) (Coords, error) {
	return Coords{}, ErrPositionUnavailable
}

type positionResult struct {
	coords Coords
	err    error
}

// ClientLocator waits for the browser to report its position (or refuse to).
// Each CurrentPosition call consumes one report.
type ClientLocator struct {
	mu      sync.Mutex
	results chan positionResult
}

func NewClientLocator() *ClientLocator {
	return &ClientLocator{results: make(chan positionResult, 1)}
}

func (l *ClientLocator) CurrentPosition(ctx context.Context) (Coords, error) {
	select {
	case res := <-l.results:
		return res.coords, res.err
	case <-ctx.Done():
		return Coords{}, ctx.Err()
	}
}

// Report delivers a position. A report arriving while another one is still
// pending replaces it.
func (l *ClientLocator) Report(c Coords) {
	l.deliver(positionResult{coords: c})
}

// Deny delivers a refusal, e.g. the user blocked location access.
func (l *ClientLocator) Deny() {
	l.deliver(positionResult{err: ErrPositionUnavailable})
}

// Discard drops a report that arrived while nobody was asking, so the next
// request waits for a fresh answer from the browser.
func (l *ClientLocator) Discard() {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.results:
	default:
	}
}

func (l *ClientLocator) deliver(res positionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.results:
	default:
	}
	l.results <- res
}
