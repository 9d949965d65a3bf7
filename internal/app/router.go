package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/betting"
	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/fixtures"
	apphttp "github.com/matchday-bet/matchday/internal/http"
	"github.com/matchday-bet/matchday/internal/http/api/admin"
	"github.com/matchday-bet/matchday/internal/http/api/front"
	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/notify"
	"github.com/matchday-bet/matchday/internal/session"
	"github.com/matchday-bet/matchday/internal/settings"
	"github.com/matchday-bet/matchday/internal/store"
	"github.com/matchday-bet/matchday/internal/wallet"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type routerDeps struct {
	cfg       *config.Config
	conn      *gorm.DB
	settings  *settings.Snapshot
	redis     *redis.Client
	store     store.Store
	sessions  session.Store
	gateway   fixtures.Gateway
	betting   *betting.Service
	wallet    *wallet.Service
	notifier  notify.Notifier
	publisher events.Publisher
}

func newRouter(deps routerDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), apphttp.RequestLogger(), metrics.Middleware())

	checks := []metrics.HealthFunc{func(ctx context.Context) error { return db.Ping(ctx, deps.conn) }}
	if deps.redis != nil {
		checks = append(checks, func(ctx context.Context) error { return deps.redis.Ping(ctx).Err() })
	}
	r.GET("/healthz", metrics.Healthz(checks...))
	r.GET("/metrics", metrics.Handler())

	front.RegisterFrontRoutes(r, front.Deps{
		Store:          deps.store,
		Sessions:       deps.sessions,
		Fixtures:       deps.gateway,
		Betting:        deps.betting,
		Wallet:         deps.wallet,
		Notifier:       deps.notifier,
		Publisher:      deps.publisher,
		JWT:            deps.cfg.JWT,
		Server:         deps.cfg.Server,
		InitialBalance: deps.cfg.Rewards.InitialBalance,
	})
	admin.RegisterAdminRoutes(r, admin.Deps{
		Settings:   deps.settings,
		Store:      deps.store,
		Publisher:  deps.publisher,
		Token:      deps.cfg.Admin.Token,
		TOTPSecret: deps.cfg.Admin.TOTPSecret,
	})
	return r
}
