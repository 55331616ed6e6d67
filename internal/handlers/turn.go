package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaycall/signaling/config"
	"github.com/relaycall/signaling/internal/auth"
	"github.com/relaycall/signaling/internal/turncred"
)

// TURNCredentials hands an authenticated caller the ICE server list with a
// freshly minted time-limited TURN credential. Credentials are never
// mintable without passing the gateway first.
func TURNCredentials(gateway *auth.Gateway, minter *turncred.Minter, turn config.TURNConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		password, token := auth.CredentialsFromQuery(c.Request.URL.Query())
		if !gateway.Authenticate(password, token) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid password or token",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"iceServers": minter.ICEServers(turn.Domain, turn.Port),
		})
	}
}
