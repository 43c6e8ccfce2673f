package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/storage"
)

// TopWinsHandler serves the local top-wins listing straight from the
// character table. Score submission to the external ranking service stays
// out of this backend.
type TopWinsHandler struct {
	repo storage.Repository
}

func NewTopWinsHandler(repo storage.Repository) *TopWinsHandler {
	return &TopWinsHandler{repo: repo}
}

// ListTopWins returns the characters with the most wins.
func (h *TopWinsHandler) ListTopWins(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	chars, err := h.repo.GetTopCharacters(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchTopWins})
		return
	}
	type row struct {
		CharacterID uint   `json:"character_id"`
		Name        string `json:"name"`
		Wins        int    `json:"wins"`
		Losses      int    `json:"losses"`
		Experience  int    `json:"experience"`
		Veteran     bool   `json:"veteran"`
	}
	out := make([]row, 0, len(chars))
	for _, ch := range chars {
		out = append(out, row{
			CharacterID: ch.ID,
			Name:        ch.Name,
			Wins:        ch.Wins,
			Losses:      ch.Losses,
			Experience:  ch.Experience,
			Veteran:     ch.Veteran,
		})
	}
	c.JSON(http.StatusOK, out)
}
