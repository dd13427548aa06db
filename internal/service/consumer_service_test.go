package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *memStore) embeddingOf(annotationId uuid.UUID) *entity.AnnotationEmbedding {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.embeddings {
		if e.AnnotationId == annotationId {
			cp := *e
			return &cp
		}
	}
	return nil
}

func TestConsumerEmbedsQueuedAnnotations(t *testing.T) {
	f := newFixture()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	embedder := &fakeEmbedder{vectors: map[string][]float32{"termination clause": {1, 0, 0}}}
	consumer := NewConsumerService(pubSub, "annotation.embed", f.factory, embedder, f.log)
	annotations := NewAnnotationService(f.factory, f.usage, NewPublisherService(pubSub, "annotation.embed"), f.events, f.log, 5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	content := "termination clause"
	req := highlightRequest(f.document.Id)
	req.Content = &content
	res, err := annotations.Create(ctx, f.owner, req)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.store.embeddingOf(res.Id) != nil
	}, 2*time.Second, 10*time.Millisecond)
	e := f.store.embeddingOf(res.Id)
	assert.Equal(t, content, e.Document)
	assert.Equal(t, []float32{1, 0, 0}, e.Value)
}

func TestEmbedDropsEmbeddingWhenTextIsCleared(t *testing.T) {
	f := newFixture()
	cs := NewConsumerService(nil, "", f.factory, &fakeEmbedder{}, f.log).(*consumerService)
	a := f.seedAnnotation(1)
	f.store.embeddings = append(f.store.embeddings, &entity.AnnotationEmbedding{Id: uuid.New(), AnnotationId: a.Id})
	a.Content = nil

	require.NoError(t, cs.embed(context.Background(), a.Id))
	assert.Nil(t, f.store.embeddingOf(a.Id))

	require.NoError(t, cs.embed(context.Background(), uuid.New()), "missing annotations are skipped")
}

func TestProcessMessageRetriesThenAcks(t *testing.T) {
	f := newFixture()
	embedder := &fakeEmbedder{}
	cs := NewConsumerService(nil, "", f.factory, embedder, f.log).(*consumerService)
	cs.retryDelay = time.Millisecond
	a := f.seedAnnotation(1)

	bad := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	cs.processMessage(context.Background(), bad)
	assertAcked(t, bad)

	embedder.err = errors.New("model not loaded")
	payload, err := json.Marshal(dto.EmbedAnnotationMessage{AnnotationId: a.Id})
	require.NoError(t, err)
	failing := message.NewMessage(watermill.NewUUID(), payload)
	cs.processMessage(context.Background(), failing)

	assertAcked(t, failing)
	assert.Equal(t, embedAttempts, embedder.calls, "retries are bounded")
	assert.Nil(t, f.store.embeddingOf(a.Id))
}

func TestProcessMessageNacksOnShutdown(t *testing.T) {
	f := newFixture()
	embedder := &fakeEmbedder{err: errors.New("model not loaded")}
	cs := NewConsumerService(nil, "", f.factory, embedder, f.log).(*consumerService)
	cs.retryDelay = time.Hour
	a := f.seedAnnotation(1)

	payload, err := json.Marshal(dto.EmbedAnnotationMessage{AnnotationId: a.Id})
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), payload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cs.processMessage(ctx, msg)

	select {
	case <-msg.Nacked():
	default:
		t.Fatal("expected the message to be nacked")
	}
	assert.Equal(t, 1, embedder.calls)
}

func assertAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	default:
		t.Fatal("expected the message to be acked")
	}
}
