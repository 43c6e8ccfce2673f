package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/game"
)

// GetBattle returns a battle with snapshots and action log.
func (h *ArenaHandler) GetBattle(c *gin.Context) {
	id, ok := parseID(c, "battleID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	b, err := h.svc.GetBattle(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetBattleActions returns the ordered action log plus per-player damage
// totals for one battle.
func (h *ArenaHandler) GetBattleActions(c *gin.Context) {
	id, ok := parseID(c, "battleID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	actions, err := h.svc.Actions(id)
	if err != nil {
		respondError(c, err)
		return
	}
	totals, err := h.svc.DamageTotals(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"actions":       actions,
		"damage_totals": totals,
	})
}

type AttackPayload struct {
	Kind string `json:"kind"`
}

// PerformAttack resolves one attack by the caller.
func (h *ArenaHandler) PerformAttack(c *gin.Context) {
	id, ok := parseID(c, "battleID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	var req AttackPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, action, err := h.svc.PerformAttack(id, callerID(c), game.ActionKind(req.Kind))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"damage":       action.Damage,
		"critical":     action.Critical,
		"dodged":       action.Dodged,
		"state":        b.State,
		"current_turn": b.CurrentTurn,
		"winner":       b.Winner,
	})
}

// EndTurn marks the caller's side done for the round.
func (h *ArenaHandler) EndTurn(c *gin.Context) {
	id, ok := parseID(c, "battleID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	b, err := h.svc.EndTurn(id, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"round":        b.TurnCount,
		"current_turn": b.CurrentTurn,
	})
}

// Forfeit concedes the battle on behalf of the caller.
func (h *ArenaHandler) Forfeit(c *gin.Context) {
	id, ok := parseID(c, "battleID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	b, err := h.svc.Forfeit(id, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  b.State,
		"winner": b.Winner,
	})
}
