package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaycall/signaling/internal/room"
)

// Health reports liveness plus the current room occupancy.
func Health(registry *room.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"users":  registry.Count(),
		})
	}
}
