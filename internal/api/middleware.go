package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/constants"
)

// IdentityRequired extracts the verified caller identity set by the
// upstream gateway. Authentication itself happens outside this service;
// requests without an identity header are rejected.
func IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := strings.TrimSpace(c.GetHeader(constants.HeaderPlayerID))
		if playerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			c.Abort()
			return
		}
		c.Set("playerID", playerID)
		c.Next()
	}
}

// callerID returns the identity placed by IdentityRequired.
func callerID(c *gin.Context) string {
	v, _ := c.Get("playerID")
	s, _ := v.(string)
	return s
}
