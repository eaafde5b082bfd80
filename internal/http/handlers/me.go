package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated player's balance and active session, if any.
func (h *Handler) Me(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.Games.Balance(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"player_id": playerID,
		"balance":   balance.String(),
	}
	if snap, ok := h.Games.GetActiveSession(playerID); ok {
		resp["active_session"] = snap
	}

	c.JSON(http.StatusOK, resp)
}

// MyHistory returns the player's most recent resolved games.
func (h *Handler) MyHistory(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	outcomes, err := h.History.GetByPlayer(c.Request.Context(), playerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": outcomes})
}
