package handlers

import (
	"context"
	"errors"
	"net/http"

	"wager_service/internal/domain"
	"wager_service/internal/game"
	"wager_service/internal/service"

	"github.com/gin-gonic/gin"
)

// HistoryReader serves the player-facing outcome log.
type HistoryReader interface {
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.Outcome, error)
}

type Handler struct {
	Games    *service.GameService
	History  HistoryReader
	Schedule *game.Schedule
	MinStake domain.Amount
	MaxStake domain.Amount
	AdminIDs map[int64]bool
}

func NewHandler(games *service.GameService, hist HistoryReader, sched *game.Schedule, minStake, maxStake domain.Amount, adminIDs []int64) *Handler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Handler{
		Games:    games,
		History:  hist,
		Schedule: sched,
		MinStake: minStake,
		MaxStake: maxStake,
		AdminIDs: admins,
	}
}

// getPlayerID extracts the authenticated player id set by the JWT middleware.
func getPlayerID(c *gin.Context) (int64, bool) {
	val, ok := c.Get("player_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
	case errors.Is(err, domain.ErrActiveSessionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "you already have an active game"})
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, domain.ErrGameAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "game already resolved"})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many actions, slow down"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
