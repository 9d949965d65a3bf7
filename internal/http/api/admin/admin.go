package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/events"
	apphttp "github.com/matchday-bet/matchday/internal/http"
	"github.com/matchday-bet/matchday/internal/http/api/admin/handlers"
	"github.com/matchday-bet/matchday/internal/settings"
	"github.com/matchday-bet/matchday/internal/store"
)

// Deps are the services behind the reviewer API.
type Deps struct {
	Settings  *settings.Snapshot
	Store     store.Store
	Publisher events.Publisher
	Token     string
	// TOTPSecret, when set, requires an X-Admin-OTP code next to the token.
	TOTPSecret string
}

// RegisterAdminRoutes registers the token-guarded /api/admin routes.
func RegisterAdminRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Store == nil {
		return
	}

	admin := r.Group("/api/admin")
	admin.Use(apphttp.AdminTokenMiddleware(deps.Token, deps.TOTPSecret))

	userHandler := handlers.NewUserHandler(deps.Store, deps.Publisher)
	admin.POST("/users/:id/vip", userHandler.SetVIP)

	transactionHandler := handlers.NewTransactionHandler(deps.Store)
	admin.PATCH("/transactions/:id", transactionHandler.UpdateStatus)

	settingHandler := handlers.NewSettingHandler(deps.Settings)
	admin.GET("/settings", settingHandler.List)
	admin.PUT("/settings/:key", settingHandler.Put)
}
