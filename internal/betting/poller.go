package betting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matchday-bet/matchday/internal/store"
	log "github.com/sirupsen/logrus"
)

const defaultPollerConcurrency = 4

// Poller periodically settles pending bets of every user, so results land without
// the client asking for them.
type Poller struct {
	service        *Service
	store          store.Store
	interval       time.Duration
	maxConcurrency int
}

// NewPoller returns nil when interval is not positive, which disables polling.
func NewPoller(service *Service, st store.Store, interval time.Duration, maxConcurrency int) *Poller {
	if service == nil || st == nil || interval <= 0 {
		return nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = defaultPollerConcurrency
	}
	return &Poller{service: service, store: st, interval: interval, maxConcurrency: maxConcurrency}
}

// Start launches the polling loop in a background goroutine.
func (p *Poller) Start(ctx context.Context) {
	if p == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go p.run(ctx)
	log.Infof("settlement poller started (interval=%s)", p.interval)
}

func (p *Poller) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.poll(ctx)
		if ctx.Err() != nil {
			return
		}
		timer := time.NewTimer(p.interval)
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

// poll settles every user with pending bets and returns how many bets were settled.
func (p *Poller) poll(ctx context.Context) int {
	userIDs, err := p.store.UsersWithPendingBets(ctx)
	if err != nil {
		log.WithError(err).Warn("settlement poller: list users failed")
		return 0
	}

	sem := make(chan struct{}, p.maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0

	for _, userID := range userIDs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return total
		}
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			defer func() { <-sem }()
			settlement, errSettle := p.service.SettlePending(ctx, userID)
			if errSettle != nil {
				if !errors.Is(errSettle, store.ErrNotFound) && ctx.Err() == nil {
					log.WithError(errSettle).Warnf("settlement poller: settle failed (user=%d)", userID)
				}
				return
			}
			mu.Lock()
			total += len(settlement.Results)
			mu.Unlock()
		}(userID)
	}
	wg.Wait()

	if total > 0 {
		log.Infof("settlement poller: settled %d bets across %d users", total, len(userIDs))
	}
	return total
}
