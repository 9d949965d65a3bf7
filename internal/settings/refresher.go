package settings

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Refresher periodically reloads the settings snapshot so rotated codes apply without a restart.
type Refresher struct {
	snapshot *Snapshot
	interval time.Duration
}

// NewRefresher builds a refresher; a non-positive interval uses DefaultRefreshInterval.
func NewRefresher(snapshot *Snapshot, interval time.Duration) *Refresher {
	if snapshot == nil {
		return nil
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{snapshot: snapshot, interval: interval}
}

// Start launches the refresh loop in a background goroutine.
func (r *Refresher) Start(ctx context.Context) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go r.run(ctx)
	log.Infof("settings refresher started (interval=%s)", r.interval)
}

func (r *Refresher) run(ctx context.Context) {
	for {
		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
		if errRefresh := r.snapshot.Reload(ctx); errRefresh != nil && ctx.Err() == nil {
			log.WithError(errRefresh).Warn("settings refresher: reload failed")
		}
	}
}
