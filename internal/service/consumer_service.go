package service

import (
	"context"
	"encoding/json"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IConsumerService keeps annotation search embeddings in sync with their
// text.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

const (
	embedAttempts   = 3
	embedRetryDelay = 2 * time.Second
)

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger

	attempts   int
	retryDelay time.Duration
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
		attempts:          embedAttempts,
		retryDelay:        embedRetryDelay,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedAnnotationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("EMBEDDING", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	// The in-memory channel redelivers a nacked message at once, so failures
	// are retried here with a delay and then dropped.
	for attempt := 1; ; attempt++ {
		err := cs.embed(ctx, payload.AnnotationId)
		if err == nil {
			break
		}
		if attempt >= cs.attempts {
			cs.logger.Error("EMBEDDING", "Failed to embed annotation, giving up", map[string]interface{}{
				"annotation_id": payload.AnnotationId.String(),
				"attempts":      attempt,
				"error":         err.Error(),
			})
			break
		}
		cs.logger.Warn("EMBEDDING", "Failed to embed annotation, retrying", map[string]interface{}{
			"annotation_id": payload.AnnotationId.String(),
			"attempt":       attempt,
			"error":         err.Error(),
		})

		select {
		case <-ctx.Done():
			msg.Nack()
			return
		case <-time.After(cs.retryDelay):
		}
	}
	msg.Ack()
}

// embed replaces the annotation's embedding. Annotations without text, or
// that no longer exist, end up with none.
func (cs *consumerService) embed(ctx context.Context, annotationId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	annotation, err := uow.AnnotationRepository().FindOne(ctx, specification.ByID{ID: annotationId})
	if err != nil {
		return err
	}
	if annotation == nil {
		cs.logger.Debug("EMBEDDING", "Annotation gone, skipping", map[string]interface{}{
			"annotation_id": annotationId.String(),
		})
		return nil
	}

	text := annotation.SearchableText()
	if text == "" {
		return uow.AnnotationEmbeddingRepository().DeleteByAnnotationId(ctx, annotationId)
	}

	vector, err := cs.embeddingProvider.Generate(ctx, text)
	if err != nil {
		return err
	}

	if err := uow.AnnotationEmbeddingRepository().Upsert(ctx, &entity.AnnotationEmbedding{
		Id:           uuid.New(),
		AnnotationId: annotation.Id,
		Document:     text,
		Value:        vector,
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}

	cs.logger.Info("EMBEDDING", "Annotation embedded", map[string]interface{}{
		"annotation_id": annotationId.String(),
		"dimensions":    len(vector),
	})
	return nil
}
