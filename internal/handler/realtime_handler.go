package handler

import (
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/pkg/serverutils"
	"legal-annotation-be/internal/service"
	internalWS "legal-annotation-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type RealtimeHandler struct {
	documentService service.IDocumentService
	hub             *internalWS.Hub
	logger          logger.ILogger
}

func NewRealtimeHandler(documentService service.IDocumentService, hub *internalWS.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		documentService: documentService,
		hub:             hub,
		logger:          log,
	}
}

// ServeWs authenticates the handshake and joins the document room.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on the handshake, so the query param wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userID, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("REALTIME", "Invalid token in ws handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	documentID, err := uuid.Parse(c.Query("document_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "document_id must be a valid uuid"))
	}
	// Joining a room requires read access to the document.
	if _, err := h.documentService.GetStatus(c.UserContext(), userID, documentID); err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("REALTIME", "Starting websocket session", map[string]interface{}{
			"user_id":     userID.String(),
			"document_id": documentID.String(),
		})
		internalWS.ServeWs(h.hub, conn, userID, documentID)
		h.logger.Info("REALTIME", "Websocket session ended", map[string]interface{}{"user_id": userID.String()})
	})(c)
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
