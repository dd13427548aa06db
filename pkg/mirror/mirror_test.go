package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"legal-annotation-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	stored   []*entity.Annotation
	failWith error
	// block, when set, makes every mutation wait for it or the context.
	block chan struct{}
}

func (b *fakeBackend) wait(ctx context.Context) error {
	if b.block == nil {
		return nil
	}
	select {
	case <-b.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *fakeBackend) List(ctx context.Context, documentId uuid.UUID, page *int) ([]*entity.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return nil, b.failWith
	}
	var out []*entity.Annotation
	for _, a := range b.stored {
		if a.DocumentId == documentId && (page == nil || a.PageNumber == *page) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (b *fakeBackend) Create(ctx context.Context, a *entity.Annotation) (*entity.Annotation, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return nil, b.failWith
	}
	a.CreatedAt = time.Now()
	b.stored = append(b.stored, a.Clone())
	return a, nil
}

func (b *fakeBackend) Update(ctx context.Context, a *entity.Annotation) (*entity.Annotation, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return nil, b.failWith
	}
	now := time.Now()
	a.UpdatedAt = &now
	return a, nil
}

func (b *fakeBackend) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failWith
}

type toastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *toastRecorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *toastRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.toasts)
}

func note(documentId uuid.UUID, page int) *entity.Annotation {
	content := "check clause 4.2"
	return &entity.Annotation{
		DocumentId: documentId,
		UserId:     uuid.New(),
		PageNumber: page,
		Type:       entity.AnnotationTypeNote,
		Color:      entity.ColorYellow,
		Position:   entity.Position{X: 10, Y: 10, Width: 50, Height: 20},
		Content:    &content,
	}
}

func seeded(t *testing.T, backend *fakeBackend, n int) (*Mirror, *toastRecorder) {
	t.Helper()
	documentId := uuid.New()
	for i := 0; i < n; i++ {
		a := note(documentId, 1)
		a.Id = uuid.New()
		backend.stored = append(backend.stored, a)
	}
	toasts := &toastRecorder{}
	m := New(documentId, nil, backend, toasts, nil)
	require.NoError(t, m.Load(context.Background()))
	require.Equal(t, n, m.Len())
	return m, toasts
}

func TestCreateThenDeleteKeepsLength(t *testing.T) {
	m, toasts := seeded(t, &fakeBackend{}, 3)

	created, err := m.Create(context.Background(), note(m.DocumentId(), 1))
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())
	assert.NotEqual(t, uuid.Nil, created.Id)

	require.NoError(t, m.Delete(context.Background(), created.Id))
	assert.Equal(t, 3, m.Len())
	assert.Zero(t, toasts.count())
}

func TestCreateFailureRollsBack(t *testing.T) {
	backend := &fakeBackend{}
	m, toasts := seeded(t, backend, 2)
	backend.failWith = errors.New("permission denied")

	_, err := m.Create(context.Background(), note(m.DocumentId(), 1))
	assert.Error(t, err)
	assert.Equal(t, 2, m.Len())
	require.Equal(t, 1, toasts.count())
	assert.Equal(t, ToastError, toasts.toasts[0].Level)
}

func TestCreateIsVisibleBeforeBackendAnswers(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	m, _ := seeded(t, backend, 0)

	done := make(chan error, 1)
	go func() {
		_, err := m.Create(context.Background(), note(m.DocumentId(), 1))
		done <- err
	}()

	assert.Eventually(t, func() bool { return m.Len() == 1 }, time.Second, 5*time.Millisecond)
	close(backend.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, m.Len())
}

func TestUpdateFailureRestoresPrevious(t *testing.T) {
	backend := &fakeBackend{}
	m, toasts := seeded(t, backend, 1)
	original := m.List()[0]

	backend.failWith = errors.New("timeout")
	_, err := m.Update(context.Background(), original.Id, func(a *entity.Annotation) error {
		a.Color = entity.ColorRed
		return nil
	})
	assert.Error(t, err)

	got, ok := m.Get(original.Id)
	require.True(t, ok)
	assert.Equal(t, entity.ColorYellow, got.Color)
	assert.Equal(t, 1, toasts.count())
}

func TestUpdateSuccess(t *testing.T) {
	m, _ := seeded(t, &fakeBackend{}, 1)
	id := m.List()[0].Id

	saved, err := m.Update(context.Background(), id, func(a *entity.Annotation) error {
		a.Color = entity.ColorGreen
		a.Id = uuid.New()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, id, saved.Id)
	assert.NotNil(t, saved.UpdatedAt)

	got, _ := m.Get(id)
	assert.Equal(t, entity.ColorGreen, got.Color)
}

func TestUpdateMutateErrorChangesNothing(t *testing.T) {
	m, _ := seeded(t, &fakeBackend{}, 1)
	id := m.List()[0].Id

	_, err := m.Update(context.Background(), id, func(a *entity.Annotation) error {
		a.Color = entity.ColorGreen
		return errors.New("invalid")
	})
	assert.Error(t, err)
	got, _ := m.Get(id)
	assert.Equal(t, entity.ColorYellow, got.Color)

	_, err = m.Update(context.Background(), uuid.New(), func(*entity.Annotation) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFailureReinsertsAtIndex(t *testing.T) {
	backend := &fakeBackend{}
	m, toasts := seeded(t, backend, 3)
	before := m.List()

	backend.failWith = errors.New("conflict")
	err := m.Delete(context.Background(), before[1].Id)
	assert.Error(t, err)

	after := m.List()
	require.Len(t, after, 3)
	for i := range before {
		assert.Equal(t, before[i].Id, after[i].Id)
	}
	assert.Equal(t, 1, toasts.count())
}

func TestCloseAbortsInFlight(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	m, toasts := seeded(t, backend, 0)

	done := make(chan error, 1)
	go func() {
		_, err := m.Create(context.Background(), note(m.DocumentId(), 1))
		done <- err
	}()
	require.Eventually(t, func() bool { return m.Len() == 1 }, time.Second, 5*time.Millisecond)

	m.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("in-flight create was not cancelled")
	}
	assert.Zero(t, toasts.count())

	_, err := m.Create(context.Background(), note(m.DocumentId(), 1))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Delete(context.Background(), uuid.New()), ErrClosed)
	assert.ErrorIs(t, m.Load(context.Background()), ErrClosed)
}

func TestCallerContextCancelsRequest(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	m, _ := seeded(t, backend, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.Create(ctx, note(m.DocumentId(), 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, m.Len())
}

func TestPageScopedLoadAndApply(t *testing.T) {
	backend := &fakeBackend{}
	documentId := uuid.New()
	for _, page := range []int{1, 2, 2} {
		a := note(documentId, page)
		a.Id = uuid.New()
		backend.stored = append(backend.stored, a)
	}

	page := 2
	m := New(documentId, &page, backend, nil, nil)
	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, 2, m.Len())

	remote := note(documentId, 2)
	remote.Id = uuid.New()
	m.Apply(remote.Id, remote)
	assert.Equal(t, 3, m.Len())

	moved := remote.Clone()
	moved.PageNumber = 1
	m.Apply(moved.Id, moved)
	assert.Equal(t, 2, m.Len())

	m.Apply(m.List()[0].Id, nil)
	assert.Equal(t, 1, m.Len())

	onlyYellow := m.Filter(func(a *entity.Annotation) bool { return a.Color == entity.ColorYellow })
	assert.Len(t, onlyYellow, 1)
}
