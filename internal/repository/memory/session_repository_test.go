package memory

import (
	"context"
	"testing"
	"time"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/pkg/mirror"
	"legal-annotation-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyBackend struct{}

func (emptyBackend) List(context.Context, uuid.UUID, *int) ([]*entity.Annotation, error) {
	return nil, nil
}
func (emptyBackend) Create(_ context.Context, a *entity.Annotation) (*entity.Annotation, error) {
	return a, nil
}
func (emptyBackend) Update(_ context.Context, a *entity.Annotation) (*entity.Annotation, error) {
	return a, nil
}
func (emptyBackend) Delete(context.Context, uuid.UUID) error { return nil }

func newSession(documentID uuid.UUID) *store.Session {
	return &store.Session{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		DocumentID: documentID,
		Mirror:     mirror.New(documentID, nil, emptyBackend{}, nil, nil),
	}
}

func TestDeleteClosesSession(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	s := newSession(uuid.New())
	repo.Save(s)

	got, ok := repo.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	repo.Delete(s.ID)
	_, ok = repo.Get(s.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Mirror.Load(context.Background()), mirror.ErrClosed)
}

func TestForDocument(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	doc := uuid.New()
	repo.Save(newSession(doc))
	repo.Save(newSession(doc))
	repo.Save(newSession(uuid.New()))

	assert.Len(t, repo.ForDocument(doc), 2)
	assert.Equal(t, 3, repo.Count())
}
