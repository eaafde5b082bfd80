package http

import (
	"wager_service/internal/config"
	"wager_service/internal/http/handlers"
	"wager_service/internal/http/middleware"
	"wager_service/internal/session"
	"wager_service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries everything the route table needs.
type Deps struct {
	DB       *pgxpool.Pool
	Registry *session.Registry
	Handler  *handlers.Handler
	Hub      *ws.Hub
	Config   *config.Config
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	healthHandler := handlers.NewHealthHandler(d.DB, d.Registry)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(d.Config.APIRateLimit, d.Config.APIRateWindow))

	// Per-player action limiter, on top of the in-process dedup layer
	gameRL := middleware.GameRateLimit(d.Config.GameRateLimit, d.Config.GameRateWindow)

	h := d.Handler
	v1.GET("/me", middleware.JWT(), h.Me)
	v1.GET("/me/history", middleware.JWT(), h.MyHistory)

	v1.POST("/game/start", middleware.JWT(), gameRL, h.Start)
	v1.POST("/game/action", middleware.JWT(), gameRL, h.Action)
	v1.POST("/game/cashout", middleware.JWT(), h.CashOut)
	v1.GET("/game/state", middleware.JWT(), h.State)
	v1.GET("/game/mines/info", h.MinesInfo)
	v1.GET("/game/tower/info", h.TowerInfo)

	v1.POST("/admin/cancel", middleware.JWT(), h.AdminCancel)

	if d.Config.DevAuthEnabled {
		v1.POST("/auth/dev-token", h.DevToken)
	}

	// Outcome push for connected clients
	r.GET("/ws", h.WS(d.Hub))
}
