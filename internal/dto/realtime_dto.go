package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Message types pushed to websocket clients.
const (
	WSTypeAnnotationCreated = "annotation.created"
	WSTypeAnnotationUpdated = "annotation.updated"
	WSTypeAnnotationDeleted = "annotation.deleted"
	WSTypeCommentCreated    = "comment.created"
	WSTypeCommentDeleted    = "comment.deleted"
	WSTypeShareChanged      = "share.changed"
	WSTypeDocumentStatus    = "document.status"
	WSTypeToast             = "toast"
	WSTypeSession           = "authoring.session"
	WSTypeState             = "authoring.state"
	WSTypeError             = "error"
)

// Message types accepted from websocket clients.
const (
	WSTypeSelectTool   = "tool.select"
	WSTypeDeselectTool = "tool.deselect"
	WSTypeViewport     = "viewport"
	WSTypePointer      = "pointer"
	WSTypeSelect       = "annotation.select"
	WSTypeUpdate       = "annotation.update"
	WSTypeDelete       = "annotation.delete"
	WSTypeOpenSession  = "session.open"
	WSTypeCloseSession = "session.close"
)

// SessionEnvelope addresses an inbound message to an authoring session. The
// rest of the payload is the request for the message type.
type SessionEnvelope struct {
	SessionId uuid.UUID `json:"session_id"`
}

// AnnotationTarget is the payload of annotation.delete.
type AnnotationTarget struct {
	AnnotationId uuid.UUID `json:"annotation_id" validate:"required"`
}

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type WSOutbound struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ToastPayload struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// EventPayload wraps a domain event pushed to websocket clients.
type EventPayload struct {
	DocumentId   uuid.UUID   `json:"document_id"`
	AnnotationId *uuid.UUID  `json:"annotation_id,omitempty"`
	ActorId      uuid.UUID   `json:"actor_id"`
	Data         interface{} `json:"data"`
}
