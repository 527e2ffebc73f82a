package photo

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the gallery is public, same as the REST endpoints
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub *Hub
}

func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleFeed streams photo events to the client.
//
// Endpoint: GET /api/ws/photos
func (h *WSHandler) HandleFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("photo_feed upgrade_failed error=%q", err)
		return
	}

	id := uuid.NewString()
	log.Printf("photo_feed connected client=%s clients=%d", id, h.hub.Count()+1)
	h.hub.ServeWS(id, conn)
	log.Printf("photo_feed disconnected client=%s", id)
}
