package fixtures

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultJanitorInterval = 15 * time.Minute

// CacheJanitor periodically deletes expired rows from the match_caches table.
type CacheJanitor struct {
	cache    *DBCache
	interval time.Duration
}

// NewCacheJanitor returns nil when there is no database cache to clean.
func NewCacheJanitor(cache *DBCache, interval time.Duration) *CacheJanitor {
	if cache == nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	return &CacheJanitor{cache: cache, interval: interval}
}

// Start launches the cleanup loop in a background goroutine.
func (j *CacheJanitor) Start(ctx context.Context) {
	if j == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go j.run(ctx)
	log.Infof("fixture cache janitor started (interval=%s)", j.interval)
}

func (j *CacheJanitor) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		j.cleanupOnce(ctx)
		timer := time.NewTimer(j.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
	}
}

func (j *CacheJanitor) cleanupOnce(ctx context.Context) {
	deleted, err := j.cache.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("fixture cache janitor: purge failed")
		}
		return
	}
	if deleted > 0 {
		log.Debugf("fixture cache janitor: deleted %d expired rows", deleted)
	}
}
