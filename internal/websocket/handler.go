package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the connection and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, documentID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, DocumentID: documentID, Send: make(chan []byte, 256)}
	if !hub.Register(client) {
		c.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.writePump()
	client.readPump(ctx)
}
