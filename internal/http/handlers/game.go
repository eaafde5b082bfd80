package handlers

import (
	"net/http"

	"wager_service/internal/domain"
	"wager_service/internal/game"
	"wager_service/internal/service"

	"github.com/gin-gonic/gin"
)

// StartRequest opens a new session.
type StartRequest struct {
	GameType    string `json:"game_type" binding:"required,oneof=mines tower"`
	Stake       string `json:"stake" binding:"required"`
	HazardCount int    `json:"hazard_count" binding:"required,min=1"`
}

// ActionRequest resolves one cell/floor selector.
type ActionRequest struct {
	Token          string `json:"token" binding:"required"`
	Selector       *int   `json:"selector" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CashOutRequest collects the current winnings.
type CashOutRequest struct {
	Token          string `json:"token" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Start handles POST /game/start.
func (h *Handler) Start(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	stake, err := domain.ParseAmount(req.Stake)
	if err != nil || stake <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
		return
	}

	snap, err := h.Games.StartGame(c.Request.Context(), service.StartRequest{
		PlayerID:    playerID,
		GameType:    domain.GameType(req.GameType),
		Stake:       stake,
		HazardCount: req.HazardCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Action handles POST /game/action.
func (h *Handler) Action(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	snap, err := h.Games.ApplyAction(c.Request.Context(), playerID, req.Token, *req.Selector, req.IdempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// CashOut handles POST /game/cashout.
func (h *Handler) CashOut(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CashOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	snap, err := h.Games.CashOut(c.Request.Context(), playerID, req.Token, req.IdempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// State handles GET /game/state, used for reconnect/recovery.
func (h *Handler) State(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	snap, ok := h.Games.GetActiveSession(playerID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": true, "session": snap})
}

// MinesInfo handles GET /game/mines/info.
func (h *Handler) MinesInfo(c *gin.Context) {
	tables := make(map[int][]float64, game.MinesMaxHazards-game.MinesMinHazards+1)
	for hazards := game.MinesMinHazards; hazards <= game.MinesMaxHazards; hazards++ {
		tables[hazards] = h.Schedule.Table(domain.GameTypeMines, hazards)
	}

	c.JSON(http.StatusOK, gin.H{
		"grid_size":   game.MinesGridSize,
		"min_hazards": game.MinesMinHazards,
		"max_hazards": game.MinesMaxHazards,
		"min_stake":   h.MinStake.String(),
		"max_stake":   h.MaxStake.String(),
		"multipliers": tables,
	})
}

// TowerInfo handles GET /game/tower/info.
func (h *Handler) TowerInfo(c *gin.Context) {
	tables := make(map[int][]float64, game.TowerMaxHazards-game.TowerMinHazards+1)
	for hazards := game.TowerMinHazards; hazards <= game.TowerMaxHazards; hazards++ {
		tables[hazards] = h.Schedule.Table(domain.GameTypeTower, hazards)
	}

	c.JSON(http.StatusOK, gin.H{
		"floors":      game.TowerFloors,
		"floor_width": game.TowerFloorWidth,
		"min_hazards": game.TowerMinHazards,
		"max_hazards": game.TowerMaxHazards,
		"min_stake":   h.MinStake.String(),
		"max_stake":   h.MaxStake.String(),
		"multipliers": tables,
	})
}
