package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/relaycall/signaling/config"
	"github.com/relaycall/signaling/internal/auth"
	"github.com/relaycall/signaling/internal/presence"
	"github.com/relaycall/signaling/internal/room"
	"github.com/relaycall/signaling/internal/turncred"
)

// Deps carries everything the handlers close over.
type Deps struct {
	Gateway  *auth.Gateway
	Minter   *turncred.Minter
	Registry *room.Registry
	Router   *room.Router
	Presence presence.Store
	TURN     config.TURNConfig
}

// Register mounts the signaling server's routes on r.
func Register(r *gin.Engine, d Deps) {
	r.GET("/health", Health(d.Registry))
	r.POST("/auth", Login(d.Gateway))
	r.GET("/turn-credentials", TURNCredentials(d.Gateway, d.Minter, d.TURN))
	r.GET("/ws", Signaling(d))
}
