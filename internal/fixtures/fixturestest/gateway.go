// Package fixturestest provides an in-memory fixtures.Gateway for tests.
package fixturestest

import (
	"context"
	"sync"

	"github.com/matchday-bet/matchday/internal/fixtures"
)

// Gateway serves fixtures registered with Set. It is safe for concurrent use.
type Gateway struct {
	mu       sync.Mutex
	fixtures map[string]fixtures.Fixture
	order    []string
	errs     map[string]error
	lookups  map[string]int
	// Err, when set, is returned by every call.
	Err error
}

// New returns an empty gateway.
func New() *Gateway {
	return &Gateway{
		fixtures: make(map[string]fixtures.Fixture),
		errs:     make(map[string]error),
		lookups:  make(map[string]int),
	}
}

// Set registers or replaces a fixture.
func (g *Gateway) Set(f fixtures.Fixture) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := f.ID()
	if _, ok := g.fixtures[id]; !ok {
		g.order = append(g.order, id)
	}
	g.fixtures[id] = f
}

// Finish marks a fixture finished with the given final result, e.g. "2 - 1".
func (g *Gateway) Finish(matchID, result string) {
	g.Set(fixtures.Fixture{EventKey: fixtures.Key(matchID), EventStatus: fixtures.StatusFinished, EventFinalResult: result})
}

// FailMatch makes lookups of matchID return err.
func (g *Gateway) FailMatch(matchID string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[matchID] = err
}

// Lookups returns how often Match was called for matchID.
func (g *Gateway) Lookups(matchID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lookups[matchID]
}

// Live returns fixtures flagged live.
func (g *Gateway) Live(ctx context.Context) ([]fixtures.Fixture, error) {
	return g.filter(func(f fixtures.Fixture) bool { return f.Live() })
}

// Upcoming returns every fixture, live first.
func (g *Gateway) Upcoming(ctx context.Context) ([]fixtures.Fixture, error) {
	live, err := g.Live(ctx)
	if err != nil {
		return nil, err
	}
	all, err := g.filter(func(fixtures.Fixture) bool { return true })
	if err != nil {
		return nil, err
	}
	return fixtures.MergeUpcoming(live, all), nil
}

// ByDate returns fixtures whose event_date equals date.
func (g *Gateway) ByDate(ctx context.Context, date string) ([]fixtures.Fixture, error) {
	return g.filter(func(f fixtures.Fixture) bool { return f.EventDate == date })
}

// Match returns a registered fixture or nil.
func (g *Gateway) Match(ctx context.Context, matchID string) (*fixtures.Fixture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups[matchID]++
	if g.Err != nil {
		return nil, g.Err
	}
	if err, ok := g.errs[matchID]; ok {
		return nil, err
	}
	f, ok := g.fixtures[matchID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (g *Gateway) filter(keep func(fixtures.Fixture) bool) ([]fixtures.Fixture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	out := []fixtures.Fixture{}
	for _, id := range g.order {
		if f := g.fixtures[id]; keep(f) {
			out = append(out, f)
		}
	}
	return out, nil
}
