package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
)

type TimeoutsPayload struct {
	BattleTimeoutSeconds int `json:"battle_timeout_seconds"`
	TurnTimeoutSeconds   int `json:"turn_timeout_seconds"`
}

// UpdateTimeouts changes the battle-wide and per-turn idle windows.
// Restricted to the configured operator identity by the service.
func (h *ArenaHandler) UpdateTimeouts(c *gin.Context) {
	var req TimeoutsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	battle := time.Duration(req.BattleTimeoutSeconds) * time.Second
	turn := time.Duration(req.TurnTimeoutSeconds) * time.Second
	if err := h.svc.SetTimeouts(callerID(c), battle, turn); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Timeouts updated"})
}

// EmergencyCancel terminates an in-progress battle without a winner.
// Restricted to the configured operator identity by the service.
func (h *ArenaHandler) EmergencyCancel(c *gin.Context) {
	id, ok := parseID(c, "battleID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	if err := h.svc.EmergencyCancel(callerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Battle canceled"})
}
