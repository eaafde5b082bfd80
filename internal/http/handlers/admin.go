package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminCancelRequest force-cancels a player's active session.
type AdminCancelRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
}

// AdminCancel handles POST /admin/cancel. Only players on the admin
// allow-list may call it; the target session is refunded if present.
func (h *Handler) AdminCancel(c *gin.Context) {
	callerID, ok := getPlayerID(c)
	if !ok || !h.AdminIDs[callerID] {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req AdminCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	refunded, err := h.Games.CancelByAdmin(c.Request.Context(), req.PlayerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refunded": refunded})
}
