package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/betting"
	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/fixtures"
	"github.com/matchday-bet/matchday/internal/logging"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/security"
	"github.com/matchday-bet/matchday/internal/settings"
	"github.com/matchday-bet/matchday/internal/store"
	"github.com/matchday-bet/matchday/internal/wallet"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	log.Infof("migrations applied (config=%s)", configPath)
	return nil
}

// RunServer boots the API server and its background loops and blocks until ctx ends.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	appCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if errValidate := appCfg.Validate(); errValidate != nil {
		return errValidate
	}
	logCloser, err := logging.Setup(appCfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	if appCfg.JWT.Secret == "" {
		secret, errSecret := security.GenerateRandomString(32)
		if errSecret != nil {
			return fmt.Errorf("generate jwt secret: %w", errSecret)
		}
		appCfg.JWT.Secret = secret
		log.Warn("jwt.secret is empty; using an ephemeral secret, sessions will not survive a restart")
	}

	conn, err := db.Open(appCfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	overrides := settings.NewSnapshot(conn)
	if errRefresh := overrides.Reload(ctx); errRefresh != nil {
		return fmt.Errorf("load settings: %w", errRefresh)
	}

	redisClient, err := openRedis(ctx, appCfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	publisher, err := events.NewPublisher(appCfg.Events)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	notifier, closeNotifier, err := buildNotifier(appCfg.Telegram)
	if err != nil {
		return err
	}
	defer closeNotifier()

	gateway, dbCache := buildFixtures(appCfg.Fixtures, conn, redisClient)
	sessions := buildSessions(redisClient)
	st := store.NewGormStore(conn)

	bettingService := betting.NewService(st, gateway, rules.NewPolicy(appCfg.Rewards), publisher, appCfg.Settlement.LookupTimeout)
	walletService, err := wallet.NewService(st, appCfg.Rewards, overrides, notifier, publisher)
	if err != nil {
		return err
	}
	if seeded, errSeed := walletService.SeedFeed(ctx, appCfg.Feed.SeedCount); errSeed != nil {
		log.WithError(errSeed).Warn("seed withdrawal feed failed")
	} else if seeded > 0 {
		log.Infof("withdrawal feed seeded (%d entries)", seeded)
	}

	router := newRouter(routerDeps{
		cfg:       appCfg,
		conn:      conn,
		settings:  overrides,
		redis:     redisClient,
		store:     st,
		sessions:  sessions,
		gateway:   gateway,
		betting:   bettingService,
		wallet:    walletService,
		notifier:  notifier,
		publisher: publisher,
	})

	if refresher := settings.NewRefresher(overrides, settings.DefaultRefreshInterval); refresher != nil {
		refresher.Start(ctx)
	}
	if janitor := fixtures.NewCacheJanitor(dbCache, 0); janitor != nil {
		janitor.Start(ctx)
	}
	if poller := betting.NewPoller(bettingService, st, appCfg.Settlement.Interval, appCfg.Settlement.MaxConcurrency); poller != nil {
		poller.Start(ctx)
	}

	return serve(ctx, appCfg.Server, router)
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, serverCfg config.ServerConfig, handler *gin.Engine) error {
	server := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	shutdownTimeout := serverCfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Infof("matchday listening on %s", serverCfg.Addr)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", errServe)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
