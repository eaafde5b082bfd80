package handlers

import (
	"net/http"

	"wager_service/internal/auth"

	"github.com/gin-gonic/gin"
)

// DevTokenRequest issues a token for a player id without verification.
type DevTokenRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
}

// DevToken handles POST /auth/dev-token. Registered only when
// DEV_AUTH_ENABLED is set: production deployments get their tokens
// from the external auth service.
func (h *Handler) DevToken(c *gin.Context) {
	var req DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	token, err := auth.GenerateJWT(req.PlayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
