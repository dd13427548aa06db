package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDSurvivesJSON(t *testing.T) {
	id := uuid.New()
	evt := New(AnnotationCreated, map[string]interface{}{KeyDocumentId: id})

	got, ok := evt.UUID(KeyDocumentId)
	require.True(t, ok)
	assert.Equal(t, id, got)

	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded BaseEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, AnnotationCreated, decoded.EventType())

	got, ok = decoded.UUID(KeyDocumentId)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = decoded.UUID("missing")
	assert.False(t, ok)
}

func TestUUIDsSurvivesJSON(t *testing.T) {
	audience := []uuid.UUID{uuid.New(), uuid.New()}
	evt := New(ShareGranted, map[string]interface{}{KeyAudience: audience})
	assert.Equal(t, audience, evt.UUIDs(KeyAudience))

	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded BaseEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, audience, decoded.UUIDs(KeyAudience))
	assert.Nil(t, decoded.UUIDs("missing"))
}
