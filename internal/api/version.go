package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/card-arena/internal/version"
)

// GetVersion reports the running build version.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": version.Version})
}
