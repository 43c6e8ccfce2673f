package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/registry"
)

// GetCharacter returns a character record.
func (h *ArenaHandler) GetCharacter(c *gin.Context) {
	id, ok := parseID(c, "characterID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidCharID})
		return
	}
	char, err := h.reg.GetCharacter(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, char)
}

// GetCombatStats returns the derived combat numbers for a character.
func (h *ArenaHandler) GetCombatStats(c *gin.Context) {
	id, ok := parseID(c, "characterID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidCharID})
		return
	}
	derived, err := h.reg.CombatStats(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, derived)
}

// SpendStatPoints distributes the caller's spendable points. Only the
// character's owner may spend.
func (h *ArenaHandler) SpendStatPoints(c *gin.Context) {
	id, ok := parseID(c, "characterID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidCharID})
		return
	}
	var alloc registry.StatAllocation
	if err := c.ShouldBindJSON(&alloc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	owner, err := h.reg.OwnerOf(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if owner != callerID(c) {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotCharacterOwner})
		return
	}
	if err := h.reg.SpendStatPoints(id, alloc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Stat points applied"})
}
