package fixtures

import (
	"context"
	"time"
)

// Gateway is the read-only view of upstream fixtures used by the API and settlement.
type Gateway interface {
	// Live returns fixtures in play.
	Live(ctx context.Context) ([]Fixture, error)
	// Upcoming returns live fixtures followed by the next days' fixtures, without duplicates.
	Upcoming(ctx context.Context) ([]Fixture, error)
	// ByDate returns the fixtures of one day (YYYY-MM-DD).
	ByDate(ctx context.Context, date string) ([]Fixture, error)
	// Match returns one fixture, or nil when it does not exist.
	Match(ctx context.Context, matchID string) (*Fixture, error)
}

// Upstream is the subset of Client the gateway depends on.
type Upstream interface {
	Fixtures(ctx context.Context, from, to string) ([]Fixture, error)
	Livescore(ctx context.Context) ([]Fixture, error)
	Fixture(ctx context.Context, matchID string) (*Fixture, error)
}

// DateLayout is the upstream date format.
const DateLayout = "2006-01-02"

// APIGateway implements Gateway against the upstream API and attaches display odds.
type APIGateway struct {
	upstream     Upstream
	odds         OddsGenerator
	upcomingDays int
	now          func() time.Time
}

// NewAPIGateway builds a gateway. A nil odds generator uses RandomOdds.
func NewAPIGateway(upstream Upstream, upcomingDays int, odds OddsGenerator) *APIGateway {
	if odds == nil {
		odds = RandomOdds
	}
	if upcomingDays <= 0 {
		upcomingDays = 3
	}
	return &APIGateway{upstream: upstream, odds: odds, upcomingDays: upcomingDays, now: time.Now}
}

// Live returns fixtures in play.
func (g *APIGateway) Live(ctx context.Context) ([]Fixture, error) {
	list, err := g.upstream.Livescore(ctx)
	if err != nil {
		return nil, err
	}
	return g.withOdds(list), nil
}

// Upcoming merges live fixtures with those of today through today+upcomingDays.
func (g *APIGateway) Upcoming(ctx context.Context) ([]Fixture, error) {
	live, errLive := g.Live(ctx)
	if errLive != nil {
		return nil, errLive
	}
	today := g.now()
	from := today.Format(DateLayout)
	to := today.AddDate(0, 0, g.upcomingDays).Format(DateLayout)
	scheduled, errFixtures := g.upstream.Fixtures(ctx, from, to)
	if errFixtures != nil {
		// Live fixtures alone are still a useful answer.
		return live, nil
	}
	return MergeUpcoming(live, g.withOdds(scheduled)), nil
}

// ByDate returns the fixtures of one day.
func (g *APIGateway) ByDate(ctx context.Context, date string) ([]Fixture, error) {
	if date == "" {
		date = g.now().Format(DateLayout)
	}
	list, err := g.upstream.Fixtures(ctx, date, date)
	if err != nil {
		return nil, err
	}
	return g.withOdds(list), nil
}

// Match returns one fixture with odds attached.
func (g *APIGateway) Match(ctx context.Context, matchID string) (*Fixture, error) {
	fixture, err := g.upstream.Fixture(ctx, matchID)
	if err != nil || fixture == nil {
		return nil, err
	}
	odds := g.odds()
	fixture.Odds = &odds
	return fixture, nil
}

func (g *APIGateway) withOdds(list []Fixture) []Fixture {
	out := make([]Fixture, len(list))
	for i := range list {
		out[i] = list[i]
		odds := g.odds()
		out[i].Odds = &odds
	}
	return out
}

// MergeUpcoming returns live followed by the scheduled fixtures not already live.
func MergeUpcoming(live, scheduled []Fixture) []Fixture {
	seen := make(map[Key]struct{}, len(live))
	out := make([]Fixture, 0, len(live)+len(scheduled))
	for _, f := range live {
		seen[f.EventKey] = struct{}{}
		out = append(out, f)
	}
	for _, f := range scheduled {
		if _, ok := seen[f.EventKey]; ok {
			continue
		}
		seen[f.EventKey] = struct{}{}
		out = append(out, f)
	}
	return out
}
