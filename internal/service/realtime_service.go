package service

import (
	"context"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/pkg/events"
	pktNats "legal-annotation-be/pkg/nats"

	"github.com/google/uuid"
)

// EventSubscriber is implemented by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// RealtimeService turns domain events into websocket pushes and keeps the
// authoring sessions of this instance in step with changes made elsewhere.
type RealtimeService struct {
	subscriber EventSubscriber
	delivery   Delivery
	authoring  IAuthoringService
	durable    string
	logger     logger.ILogger
}

func NewRealtimeService(subscriber EventSubscriber, delivery Delivery, authoring IAuthoringService, durable string, log logger.ILogger) *RealtimeService {
	return &RealtimeService{
		subscriber: subscriber,
		delivery:   delivery,
		authoring:  authoring,
		durable:    durable,
		logger:     log,
	}
}

// Start subscribes twice: a durable consumer shared by all instances for
// delivery (the hub fans out across instances itself) and an ephemeral one
// per instance for session state, which lives only in local memory.
func (s *RealtimeService) Start(ctx context.Context) error {
	subject := pktNats.SubjectPrefix + ".>"
	if err := s.subscriber.Subscribe(ctx, subject, s.durable, s.Deliver); err != nil {
		return err
	}
	if err := s.subscriber.Subscribe(ctx, subject, "", s.Sync); err != nil {
		return err
	}
	s.logger.Info("REALTIME", "Realtime service started", map[string]interface{}{"subject": subject})
	return nil
}

var wsTypes = map[string]string{
	events.AnnotationCreated: dto.WSTypeAnnotationCreated,
	events.AnnotationUpdated: dto.WSTypeAnnotationUpdated,
	events.AnnotationDeleted: dto.WSTypeAnnotationDeleted,
	events.CommentCreated:    dto.WSTypeCommentCreated,
	events.CommentDeleted:    dto.WSTypeCommentDeleted,
	events.ShareGranted:      dto.WSTypeShareChanged,
	events.ShareRevoked:      dto.WSTypeShareChanged,
	events.DocumentStatus:    dto.WSTypeDocumentStatus,
}

// Deliver pushes the event to the users allowed to see it.
func (s *RealtimeService) Deliver(ctx context.Context, evt events.BaseEvent) error {
	msgType, ok := wsTypes[evt.Type]
	if !ok {
		return nil
	}
	documentId, ok := evt.UUID(events.KeyDocumentId)
	if !ok {
		s.logger.Warn("REALTIME", "Event without document", map[string]interface{}{"type": evt.Type})
		return nil
	}
	actorId, _ := evt.UUID(events.KeyActorId)

	payload := dto.EventPayload{
		DocumentId: documentId,
		ActorId:    actorId,
		Data:       evt.Data[events.KeyData],
	}
	if annotationId, ok := evt.UUID(events.KeyAnnotationId); ok {
		payload.AnnotationId = &annotationId
	}
	out := dto.WSOutbound{Type: msgType, Payload: payload}

	if evt.Type == events.DocumentStatus {
		// The owner may be watching the document list rather than the
		// document, so reach every connection of theirs.
		s.delivery.SendToUser(actorId, out)
		s.delivery.BroadcastToDocument(documentId, actorId, out)
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	for _, userId := range evt.UUIDs(events.KeyAudience) {
		if seen[userId] {
			continue
		}
		seen[userId] = true
		s.delivery.SendToUser(userId, out)
	}
	return nil
}

// Sync refreshes the local sessions affected by an annotation change.
func (s *RealtimeService) Sync(ctx context.Context, evt events.BaseEvent) error {
	switch evt.Type {
	case events.AnnotationCreated, events.AnnotationUpdated, events.AnnotationDeleted,
		events.ShareGranted, events.ShareRevoked:
	default:
		return nil
	}
	documentId, ok := evt.UUID(events.KeyDocumentId)
	if !ok {
		return nil
	}
	annotationId, ok := evt.UUID(events.KeyAnnotationId)
	if !ok {
		return nil
	}
	s.authoring.ApplyRemote(ctx, documentId, annotationId, evt.Type == events.AnnotationDeleted)
	return nil
}
