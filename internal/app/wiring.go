package app

import (
	"context"
	"fmt"

	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/fixtures"
	"github.com/matchday-bet/matchday/internal/notify"
	"github.com/matchday-bet/matchday/internal/session"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	redisFixturePrefix = "matchday:fixtures:"
	redisSessionPrefix = "matchday:session:"
)

// openRedis connects to redis when an address is configured; nil means redis is disabled.
func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	log.Infof("redis connected (addr=%s db=%d)", cfg.Addr, cfg.DB)
	return client, nil
}

// buildFixtures assembles upstream client, odds, and cache. The database cache is
// returned so its janitor can be started; it is nil when redis backs the cache.
func buildFixtures(cfg config.FixturesConfig, conn *gorm.DB, redisClient *redis.Client) (fixtures.Gateway, *fixtures.DBCache) {
	upstream := fixtures.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	api := fixtures.NewAPIGateway(upstream, cfg.UpcomingDays, fixtures.RandomOdds)

	if redisClient != nil {
		cache := fixtures.NewRedisCache(redisClient, redisFixturePrefix)
		return fixtures.NewCachingGateway(api, cache, cfg.CacheTTL, cfg.MatchCacheTTL), nil
	}
	dbCache := fixtures.NewDBCache(conn)
	return fixtures.NewCachingGateway(api, dbCache, cfg.CacheTTL, cfg.MatchCacheTTL), dbCache
}

func buildSessions(redisClient *redis.Client) session.Store {
	if redisClient != nil {
		return session.NewRedisStore(redisClient, redisSessionPrefix)
	}
	return session.NewMemoryStore()
}

// buildNotifier returns the telegram notifier when a bot token is configured and the
// log notifier otherwise. The returned func flushes pending messages.
func buildNotifier(cfg config.TelegramConfig) (notify.Notifier, func(), error) {
	if cfg.Token == "" {
		return notify.LogNotifier{}, func() {}, nil
	}
	if cfg.ChatID == 0 {
		return nil, nil, fmt.Errorf("telegram.chat_id is required when telegram.token is set")
	}
	bot, err := notify.NewTelegramBot(cfg.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram: %w", err)
	}
	notifier := notify.NewTelegramNotifier(bot, cfg.ChatID)
	return notifier, func() { _ = notifier.Close() }, nil
}
