package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
)

type JoinQueuePayload struct {
	CharacterID uint `json:"character_id"`
}

// JoinQueue enters the caller into the matchmaking pool. When the join
// completes a pair the created battle is returned immediately.
func (h *ArenaHandler) JoinQueue(c *gin.Context) {
	var req JoinQueuePayload
	if err := c.ShouldBindJSON(&req); err != nil || req.CharacterID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, err := h.svc.JoinQueue(callerID(c), req.CharacterID)
	if err != nil {
		respondError(c, err)
		return
	}
	if b == nil {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Queued. Waiting for an opponent."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"battle_id":    b.ID,
		"current_turn": b.CurrentTurn,
	})
}

// LeaveQueue withdraws the caller from the matchmaking pool.
func (h *ArenaHandler) LeaveQueue(c *gin.Context) {
	if err := h.svc.LeaveQueue(callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Left the queue"})
}
