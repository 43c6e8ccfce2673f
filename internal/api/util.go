package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/game"
)

// respondError maps the error taxonomy to HTTP statuses: authorization
// failures to 403, state conflicts to 409, validation to 400, missing
// resources to 404, everything else to 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrState):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{constants.JSONKeyError: err.Error()})
}

// parseID parses a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
