package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/matchday-bet/matchday/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache stores serialized gateway responses.
type Cache interface {
	// Get returns the payload stored under key; ok is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Cache key prefixes.
const (
	keyLive     = "fixtures:live"
	keyUpcoming = "fixtures:upcoming"
	keyDate     = "fixtures:date:"
	keyMatch    = "fixtures:match:"
)

// sharedFetchTimeout bounds an upstream call shared by several waiters.
const sharedFetchTimeout = 30 * time.Second

// CachingGateway decorates a Gateway with a read-through cache. Concurrent misses
// for the same key share one upstream call.
type CachingGateway struct {
	next     Gateway
	cache    Cache
	listTTL  time.Duration
	matchTTL time.Duration
	group    singleflight.Group
}

// NewCachingGateway wraps next. Cache errors are logged and fall through to next.
func NewCachingGateway(next Gateway, cache Cache, listTTL, matchTTL time.Duration) *CachingGateway {
	return &CachingGateway{next: next, cache: cache, listTTL: listTTL, matchTTL: matchTTL}
}

// Live returns cached live fixtures.
func (g *CachingGateway) Live(ctx context.Context) ([]Fixture, error) {
	return cachedList(ctx, g, keyLive, g.listTTL, g.next.Live)
}

// Upcoming returns cached upcoming fixtures.
func (g *CachingGateway) Upcoming(ctx context.Context) ([]Fixture, error) {
	return cachedList(ctx, g, keyUpcoming, g.listTTL, g.next.Upcoming)
}

// ByDate returns cached fixtures of one day.
func (g *CachingGateway) ByDate(ctx context.Context, date string) ([]Fixture, error) {
	return cachedList(ctx, g, keyDate+date, g.listTTL, func(ctx context.Context) ([]Fixture, error) {
		return g.next.ByDate(ctx, date)
	})
}

// Match returns one cached fixture. Unknown matches are cached as null.
func (g *CachingGateway) Match(ctx context.Context, matchID string) (*Fixture, error) {
	var out *Fixture
	errLoad := g.load(ctx, keyMatch+matchID, g.matchTTL, &out, func(ctx context.Context) (any, error) {
		return g.next.Match(ctx, matchID)
	})
	return out, errLoad
}

func cachedList(ctx context.Context, g *CachingGateway, key string, ttl time.Duration, fetch func(context.Context) ([]Fixture, error)) ([]Fixture, error) {
	var out []Fixture
	errLoad := g.load(ctx, key, ttl, &out, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if errLoad != nil {
		return nil, errLoad
	}
	if out == nil {
		out = []Fixture{}
	}
	return out, nil
}

// load decodes the cached payload for key into dst, fetching and storing it on a miss.
func (g *CachingGateway) load(ctx context.Context, key string, ttl time.Duration, dst any, fetch func(context.Context) (any, error)) error {
	if payload, ok := g.lookup(ctx, key); ok {
		if errDecode := json.Unmarshal(payload, dst); errDecode == nil {
			return nil
		}
		log.WithField("key", key).Warn("fixtures cache: dropping undecodable entry")
	}

	// The shared fetch outlives any single caller; each caller stops waiting on its own ctx.
	done := g.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		value, errFetch := fetch(fetchCtx)
		if errFetch != nil {
			return nil, errFetch
		}
		payload, errEncode := json.Marshal(value)
		if errEncode != nil {
			return nil, errEncode
		}
		if g.cache != nil && ttl > 0 {
			if errSet := g.cache.Set(fetchCtx, key, payload, ttl); errSet != nil {
				log.WithError(errSet).WithField("key", key).Warn("fixtures cache: store failed")
			}
		}
		return payload, nil
	})
	var res singleflight.Result
	select {
	case res = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Err != nil {
		return res.Err
	}
	payload, ok := res.Val.([]byte)
	if !ok {
		return errors.New("fixtures cache: unexpected payload type")
	}
	return json.Unmarshal(payload, dst)
}

func (g *CachingGateway) lookup(ctx context.Context, key string) ([]byte, bool) {
	if g.cache == nil {
		return nil, false
	}
	payload, ok, err := g.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.FixtureCache.WithLabelValues("error").Inc()
		log.WithError(err).WithField("key", key).Warn("fixtures cache: lookup failed")
		return nil, false
	case !ok:
		metrics.FixtureCache.WithLabelValues("miss").Inc()
		return nil, false
	default:
		metrics.FixtureCache.WithLabelValues("hit").Inc()
		return payload, true
	}
}
