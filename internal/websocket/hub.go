package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InboundHandler processes a message read from a client and may return a
// reply for that client alone. Close ends a session the client opened and
// is called for every session still open when the connection goes away.
type InboundHandler interface {
	HandleMessage(ctx context.Context, userID uuid.UUID, documentID uuid.UUID, msg dto.WSMessage) (*dto.WSOutbound, error)
	Close(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error
}

// clusterMessage travels over redis so every instance can deliver to its
// own clients.
type clusterMessage struct {
	Origin           string          `json:"origin"`
	TargetUserID     string          `json:"target_user_id,omitempty"`
	TargetDocumentID string          `json:"target_document_id,omitempty"`
	ExceptUserID     string          `json:"except_user_id,omitempty"`
	Message          json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Document rooms: DocumentID -> clients viewing it
	rooms map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	// done is closed when Run returns.
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb     *redis.Client
	channel string
	// instanceID lets an instance skip its own redis echoes.
	instanceID string

	inbound InboundHandler
	logger  logger.ILogger
}

func NewHub(rdb *redis.Client, channel string, log logger.ILogger) *Hub {
	if channel == "" {
		channel = "cluster_events"
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID][]*Client),
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		rdb:        rdb,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// SetInboundHandler must be called before Run.
func (h *Hub) SetInboundHandler(handler InboundHandler) {
	h.inbound = handler
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			if client.DocumentID != uuid.Nil {
				room, ok := h.rooms[client.DocumentID]
				if !ok {
					room = make(map[*Client]struct{})
					h.rooms[client.DocumentID] = room
				}
				room[client] = struct{}{}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"user_id":     client.UserID,
				"document_id": client.DocumentID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// removeLocked detaches the client and closes its send channel exactly once.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
	}
	if room, ok := h.rooms[client.DocumentID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.DocumentID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
	}
	h.clients = make(map[uuid.UUID][]*Client)
	h.rooms = make(map[uuid.UUID]map[*Client]struct{})
}

// SendToUser delivers a message to every connection of the user, on every
// instance.
func (h *Hub) SendToUser(userID uuid.UUID, msg dto.WSOutbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode message", map[string]interface{}{"error": err.Error(), "type": msg.Type})
		return
	}
	h.deliverToUser(userID, data)
	h.publish(clusterMessage{TargetUserID: userID.String(), Message: data})
}

// BroadcastToDocument delivers a message to everyone viewing the document.
// Connections of except (if not uuid.Nil) are skipped.
func (h *Hub) BroadcastToDocument(documentID uuid.UUID, except uuid.UUID, msg dto.WSOutbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode message", map[string]interface{}{"error": err.Error(), "type": msg.Type})
		return
	}
	h.deliverToDocument(documentID, except, data)
	cm := clusterMessage{TargetDocumentID: documentID.String(), Message: data}
	if except != uuid.Nil {
		cm.ExceptUserID = except.String()
	}
	h.publish(cm)
}

// ConnectedUsers reports how many users have at least one local connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliverToUser(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.trySend(client, data)
	}
}

func (h *Hub) deliverToDocument(documentID uuid.UUID, except uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[documentID]))
	for c := range h.rooms[documentID] {
		if except != uuid.Nil && c.UserID == except {
			continue
		}
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.trySend(client, data)
	}
}

// trySend drops slow clients instead of blocking the caller.
func (h *Hub) trySend(client *Client, data []byte) {
	defer func() {
		// The hub may have closed Send between the snapshot and this send.
		_ = recover()
	}()
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		go h.Unregister(client)
	}
}

func (h *Hub) publish(cm clusterMessage) {
	if h.rdb == nil {
		return
	}
	cm.Origin = h.instanceID
	payload, err := json.Marshal(cm)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), h.channel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// subscribeToRedis delivers messages published by other instances.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var cm clusterMessage
	if err := json.Unmarshal(raw, &cm); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if cm.Origin == h.instanceID {
		return
	}

	if cm.TargetDocumentID != "" {
		documentID, err := uuid.Parse(cm.TargetDocumentID)
		if err != nil {
			return
		}
		except := uuid.Nil
		if cm.ExceptUserID != "" {
			except, _ = uuid.Parse(cm.ExceptUserID)
		}
		h.deliverToDocument(documentID, except, cm.Message)
		return
	}

	userID, err := uuid.Parse(cm.TargetUserID)
	if err != nil {
		return
	}
	h.deliverToUser(userID, cm.Message)
}
