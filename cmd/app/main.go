package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wager_service/internal/auth"
	"wager_service/internal/config"
	"wager_service/internal/db"
	"wager_service/internal/game"
	"wager_service/internal/history"
	httpServer "wager_service/internal/http"
	"wager_service/internal/http/handlers"
	"wager_service/internal/http/middleware"
	"wager_service/internal/ledger"
	"wager_service/internal/limiter"
	"wager_service/internal/logger"
	"wager_service/internal/repository"
	"wager_service/internal/service"
	"wager_service/internal/session"
	"wager_service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	auth.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	// Core wiring
	ldg := ledger.New(repository.NewLedgerRepository(dbPool))
	registry := session.NewRegistry()
	sched := game.DefaultSchedule()
	lim := limiter.New(cfg.DedupWindow, cfg.MinActionInterval)

	historyRepo := repository.NewHistoryRepository(dbPool)
	dispatcher := history.NewDispatcher(historyRepo, cfg.HistoryBuffer)
	dispatcher.Start()
	defer dispatcher.Stop()

	games := service.NewGameService(
		service.Config{MinStake: cfg.MinStake, MaxStake: cfg.MaxStake},
		ldg, registry, game.CryptoRandSource{}, sched, lim, dispatcher,
		repository.NewSessionRepository(dbPool),
	)
	if err := games.Restore(context.Background()); err != nil {
		logger.Error("session restore failed", "error", err)
	}

	sweep := service.NewSweep(games, registry, cfg.SweepInterval, cfg.SessionTimeout)
	sweep.Start()
	defer sweep.Stop()

	hub := ws.NewHub()
	hub.ForwardOutcomes(dispatcher.Subscribe())

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.NewHandler(games, historyRepo, sched, cfg.MinStake, cfg.MaxStake, cfg.AdminPlayerIDs)
	httpServer.RegisterRoutes(r, httpServer.Deps{
		DB:       dbPool,
		Registry: registry,
		Handler:  h,
		Hub:      hub,
		Config:   cfg,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
