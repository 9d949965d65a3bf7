package front

import (
	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/betting"
	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/fixtures"
	apphttp "github.com/matchday-bet/matchday/internal/http"
	"github.com/matchday-bet/matchday/internal/http/api/front/handlers"
	"github.com/matchday-bet/matchday/internal/notify"
	"github.com/matchday-bet/matchday/internal/session"
	"github.com/matchday-bet/matchday/internal/store"
	"github.com/matchday-bet/matchday/internal/wallet"
)

// Deps are the services behind the player-facing API.
type Deps struct {
	Store     store.Store
	Sessions  session.Store
	Fixtures  fixtures.Gateway
	Betting   *betting.Service
	Wallet    *wallet.Service
	Notifier  notify.Notifier
	Publisher events.Publisher

	JWT            config.JWTConfig
	Server         config.ServerConfig
	InitialBalance int64
}

// RegisterFrontRoutes registers public and authenticated /api routes.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Store == nil || deps.Sessions == nil {
		return
	}

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.Store, deps.Sessions, deps.JWT, deps.Server, deps.InitialBalance, deps.Notifier, deps.Publisher)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	matchHandler := handlers.NewMatchHandler(deps.Fixtures)
	api.GET("/matches", matchHandler.ByDate)
	api.GET("/upcoming-matches", matchHandler.Upcoming)
	api.GET("/live-matches", matchHandler.Live)
	api.GET("/match/:matchId", matchHandler.Get)

	walletHandler := handlers.NewWalletHandler(deps.Wallet)
	api.GET("/virtual-transactions", walletHandler.Feed)
	api.GET("/leaderboard", walletHandler.Leaderboard)

	authed := api.Group("")
	authed.Use(apphttp.SessionAuthMiddleware(apphttp.SessionAuth{
		Secret:     deps.JWT.Secret,
		CookieName: deps.Server.CookieName,
		Sessions:   deps.Sessions,
		Store:      deps.Store,
	}))

	authed.POST("/logout", authHandler.Logout)
	authed.GET("/me", authHandler.Me)

	betHandler := handlers.NewBetHandler(deps.Betting)
	authed.POST("/place-bet", betHandler.Place)
	authed.GET("/my-bets", betHandler.List)
	authed.POST("/check-bet-results", betHandler.CheckResults)

	authed.POST("/lucky-spin", walletHandler.Spin)
	authed.POST("/activate-vip", walletHandler.ActivateVIP)
	authed.POST("/request-withdrawal", walletHandler.RequestWithdrawal)
	authed.GET("/my-transactions", walletHandler.Transactions)
}
