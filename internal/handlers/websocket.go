package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/relaycall/signaling/internal/auth"
	"github.com/relaycall/signaling/internal/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// CloseAuthRejected is the close code clients watch for to tell a rejected
// credential apart from a network drop (1006).
const CloseAuthRejected = 4001

// Signaling runs a connection's whole lifecycle: authenticate the upgrade
// request, register with the room, pump inbound frames through the router,
// and clean up exactly once on disconnect.
func Signaling(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		password, token := auth.CredentialsFromQuery(c.Request.URL.Query())
		if !d.Gateway.Authenticate(password, token) {
			// Rejected before the upgrade; the connection is never registered.
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid password or token",
			})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		client := room.NewClient(conn)
		id := d.Registry.Add(client)
		if err := d.Presence.Join(context.Background(), id); err != nil {
			log.Printf("Presence mirror join: %v", err)
		}
		log.Printf("+ %s joined (%d online)", shortID(id), d.Registry.Count())

		go client.WritePump()
		go func() {
			client.ReadLoop(func(frame []byte) {
				d.Router.Route(id, frame)
			})
			// Remove reports false if another path already cleaned up, so the
			// leave announcement goes out exactly once.
			if d.Registry.Remove(id) {
				if err := d.Presence.Leave(context.Background(), id); err != nil {
					log.Printf("Presence mirror leave: %v", err)
				}
				log.Printf("- %s left (%d online)", shortID(id), d.Registry.Count())
			}
		}()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
