package websocket

import (
	"context"
	"encoding/json"
	"time"

	"legal-annotation-be/internal/dto"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// handleTimeout bounds a single inbound message.
	handleTimeout = 15 * time.Second
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	UserID uuid.UUID

	// DocumentID is the document the connection is viewing, uuid.Nil for
	// user-level notifications only.
	DocumentID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	// sessions opened over this connection. Only the read pump touches it.
	sessions map[uuid.UUID]struct{}
}

// readPump pumps messages from the websocket connection to the inbound
// handler. ctx is cancelled when the connection goes away.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.closeSessions(ctx)
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			return
		}
		c.handle(ctx, raw)
	}
}

func (c *Client) handle(ctx context.Context, raw []byte) {
	var msg dto.WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
		c.reply(dto.WSOutbound{Type: dto.WSTypeError, Payload: map[string]string{"message": "malformed message"}})
		return
	}
	if c.Hub.inbound == nil {
		return
	}

	msgCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	out, err := c.Hub.inbound.HandleMessage(msgCtx, c.UserID, c.DocumentID, msg)
	if err != nil {
		c.Hub.logger.Info("Client", "Inbound message rejected", map[string]interface{}{
			"user_id": c.UserID,
			"type":    msg.Type,
			"error":   err.Error(),
		})
		c.reply(dto.WSOutbound{Type: dto.WSTypeError, Payload: map[string]string{"message": err.Error(), "request": msg.Type}})
		return
	}
	c.track(msg, out)
	if out != nil {
		c.reply(*out)
	}
}

func (c *Client) track(msg dto.WSMessage, out *dto.WSOutbound) {
	switch msg.Type {
	case dto.WSTypeOpenSession:
		if out == nil {
			return
		}
		if res, ok := out.Payload.(*dto.AuthoringSessionResponse); ok {
			if c.sessions == nil {
				c.sessions = make(map[uuid.UUID]struct{})
			}
			c.sessions[res.Id] = struct{}{}
		}
	case dto.WSTypeCloseSession:
		var env dto.SessionEnvelope
		if err := json.Unmarshal(msg.Payload, &env); err == nil {
			delete(c.sessions, env.SessionId)
		}
	}
}

// closeSessions ends the sessions this connection left open.
func (c *Client) closeSessions(ctx context.Context) {
	if c.Hub.inbound == nil || len(c.sessions) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
	defer cancel()

	for id := range c.sessions {
		if err := c.Hub.inbound.Close(ctx, c.UserID, id); err != nil {
			c.Hub.logger.Info("Client", "Session already gone", map[string]interface{}{
				"user_id":    c.UserID,
				"session_id": id,
				"error":      err.Error(),
			})
		}
	}
	c.sessions = nil
}

func (c *Client) reply(msg dto.WSOutbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.Hub.trySend(c, data)
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Hub.logger.Info("Client", "Ping failed", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
				return
			}
		}
	}
}
