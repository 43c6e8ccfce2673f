package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
)

type IssueChallengePayload struct {
	ChallengedID string `json:"challenged_id"`
	CharacterID  uint   `json:"character_id"`
}

// IssueChallenge records a direct invitation from the caller.
func (h *ArenaHandler) IssueChallenge(c *gin.Context) {
	var req IssueChallengePayload
	if err := c.ShouldBindJSON(&req); err != nil || req.ChallengedID == "" || req.CharacterID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if err := h.svc.IssueChallenge(callerID(c), req.ChallengedID, req.CharacterID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{constants.JSONKeyMessage: "Challenge issued"})
}

type AcceptChallengePayload struct {
	ChallengerID string `json:"challenger_id"`
	CharacterID  uint   `json:"character_id"`
}

// AcceptChallenge accepts a pending invitation and starts the battle.
func (h *ArenaHandler) AcceptChallenge(c *gin.Context) {
	var req AcceptChallengePayload
	if err := c.ShouldBindJSON(&req); err != nil || req.ChallengerID == "" || req.CharacterID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, err := h.svc.AcceptChallenge(req.ChallengerID, callerID(c), req.CharacterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"battle_id":    b.ID,
		"current_turn": b.CurrentTurn,
	})
}

type RejectChallengePayload struct {
	ChallengerID string `json:"challenger_id"`
}

// RejectChallenge clears a pending invitation addressed to the caller.
func (h *ArenaHandler) RejectChallenge(c *gin.Context) {
	var req RejectChallengePayload
	if err := c.ShouldBindJSON(&req); err != nil || req.ChallengerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if err := h.svc.RejectChallenge(req.ChallengerID, callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Challenge rejected"})
}
