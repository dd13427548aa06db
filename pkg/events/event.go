package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ANNOTATION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	AnnotationCreated = "ANNOTATION_CREATED"
	AnnotationUpdated = "ANNOTATION_UPDATED"
	AnnotationDeleted = "ANNOTATION_DELETED"
	CommentCreated    = "COMMENT_CREATED"
	CommentDeleted    = "COMMENT_DELETED"
	ShareGranted      = "SHARE_GRANTED"
	ShareRevoked      = "SHARE_REVOKED"
	DocumentStatus    = "DOCUMENT_STATUS_CHANGED"
)

// Payload keys shared by every annotation-scoped event.
const (
	KeyDocumentId   = "document_id"
	KeyAnnotationId = "annotation_id"
	KeyActorId      = "actor_id"
	KeyData         = "data"
	// KeyAudience lists the users allowed to see the annotation at the
	// time of the event.
	KeyAudience = "audience"
)

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// UUID reads a uuid stored under key, as written by a publisher or decoded
// from JSON.
func (e BaseEvent) UUID(key string) (uuid.UUID, bool) {
	switch v := e.Data[key].(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil
	}
	return uuid.Nil, false
}

// UUIDs reads a list of uuids stored under key.
func (e BaseEvent) UUIDs(key string) []uuid.UUID {
	switch v := e.Data[key].(type) {
	case []uuid.UUID:
		return v
	case []interface{}:
		out := make([]uuid.UUID, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if id, err := uuid.Parse(s); err == nil {
				out = append(out, id)
			}
		}
		return out
	}
	return nil
}

// Publisher is implemented by the NATS publisher.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
