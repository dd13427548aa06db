package nats

import (
	"context"
	"testing"
	"time"

	"legal-annotation-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopbackDeliversDecodedEvents(t *testing.T) {
	bus := NewLoopback()
	received := make(chan events.BaseEvent, 2)
	handler := func(_ context.Context, evt events.BaseEvent) error {
		received <- evt
		return nil
	}
	require.NoError(t, bus.Subscribe(context.Background(), SubjectPrefix+".>", "realtime", handler))
	require.NoError(t, bus.Subscribe(context.Background(), SubjectPrefix+".>", "", handler))

	documentId := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, events.New(events.DocumentStatus, map[string]interface{}{
		events.KeyDocumentId: documentId,
	})))
	cancel()

	for i := 0; i < 2; i++ {
		select {
		case evt := <-received:
			assert.Equal(t, events.DocumentStatus, evt.Type)
			// uuids arrive as strings, as they would off the wire
			assert.Equal(t, documentId.String(), evt.Data[events.KeyDocumentId])
			id, ok := evt.UUID(events.KeyDocumentId)
			require.True(t, ok)
			assert.Equal(t, documentId, id)
		case <-time.After(time.Second):
			t.Fatal("event was not delivered")
		}
	}
}

func TestLoopbackFiltersBySubject(t *testing.T) {
	bus := NewLoopback()
	received := make(chan string, 1)
	require.NoError(t, bus.Subscribe(context.Background(), SubjectPrefix+".comment_", "", func(_ context.Context, evt events.BaseEvent) error {
		received <- evt.Type
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), events.New(events.AnnotationCreated, nil)))
	require.NoError(t, bus.Publish(context.Background(), events.New(events.CommentCreated, nil)))

	select {
	case got := <-received:
		assert.Equal(t, events.CommentCreated, got)
	case <-time.After(time.Second):
		t.Fatal("comment event was not delivered")
	}
	select {
	case got := <-received:
		t.Fatalf("unexpected delivery of %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}
