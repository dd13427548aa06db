package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANNOTATION_MIN_SHAPE_SIZE", "")
	cfg := Load()

	assert.Equal(t, 5.0, cfg.Annotation.MinShapeSize)
	assert.Equal(t, 30*time.Minute, cfg.Annotation.SessionTTL)
	assert.Equal(t, "cluster_events", cfg.Realtime.ClusterChannel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANNOTATION_MIN_SHAPE_SIZE", "8.5")
	t.Setenv("AUTHORING_SESSION_TTL_MINUTES", "5")
	t.Setenv("ANNOTATION_SEARCH_LIMIT", "not-a-number")
	t.Setenv("GO_ENV", "production")
	cfg := Load()

	assert.Equal(t, 8.5, cfg.Annotation.MinShapeSize)
	assert.Equal(t, 5*time.Minute, cfg.Annotation.SessionTTL)
	assert.Equal(t, 20, cfg.Ai.SearchLimit)
	assert.True(t, cfg.IsProduction())
}
