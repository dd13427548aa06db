// Package mirror keeps an in-memory copy of the annotations on one document
// (optionally one page) and applies mutations optimistically: the local list
// changes first and is rolled back when the backend call fails.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrClosed   = errors.New("mirror closed")
	ErrNotFound = errors.New("annotation not in mirror")
)

const module = "MIRROR"

type Backend interface {
	List(ctx context.Context, documentId uuid.UUID, page *int) ([]*entity.Annotation, error)
	Create(ctx context.Context, annotation *entity.Annotation) (*entity.Annotation, error)
	Update(ctx context.Context, annotation *entity.Annotation) (*entity.Annotation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ToastLevel string

const (
	ToastError   ToastLevel = "error"
	ToastSuccess ToastLevel = "success"
)

type Toast struct {
	Level   ToastLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier shows a message to the user the mirror belongs to.
type Notifier interface {
	Notify(toast Toast)
}

type NotifierFunc func(toast Toast)

func (f NotifierFunc) Notify(toast Toast) { f(toast) }

type Mirror struct {
	documentId uuid.UUID
	page       *int
	backend    Backend
	notifier   Notifier
	logger     logger.ILogger

	mu    sync.Mutex
	items []*entity.Annotation

	// base is cancelled by Close and parents every request context.
	base    context.Context
	cancel  context.CancelFunc
	closed  bool
	pending sync.WaitGroup
}

func New(documentId uuid.UUID, page *int, backend Backend, notifier Notifier, log logger.ILogger) *Mirror {
	base, cancel := context.WithCancel(context.Background())
	if notifier == nil {
		notifier = NotifierFunc(func(Toast) {})
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	var p *int
	if page != nil {
		n := *page
		p = &n
	}
	return &Mirror{
		documentId: documentId,
		page:       p,
		backend:    backend,
		notifier:   notifier,
		logger:     log,
		base:       base,
		cancel:     cancel,
	}
}

func (m *Mirror) DocumentId() uuid.UUID {
	return m.documentId
}

// request derives a context that ends when either the caller's context or
// the mirror is done.
func (m *Mirror) request(ctx context.Context) (context.Context, context.CancelFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil, ErrClosed
	}
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.base, cancel)
	m.pending.Add(1)
	return reqCtx, func() {
		stop()
		cancel()
		m.pending.Done()
	}, nil
}

// Load replaces the local list with the backend's.
func (m *Mirror) Load(ctx context.Context) error {
	reqCtx, done, err := m.request(ctx)
	if err != nil {
		return err
	}
	defer done()

	items, err := m.backend.List(reqCtx, m.documentId, m.page)
	if err != nil {
		m.fail("Failed to load annotations", err)
		return err
	}

	m.mu.Lock()
	m.items = make([]*entity.Annotation, 0, len(items))
	for _, a := range items {
		m.items = append(m.items, a.Clone())
	}
	m.mu.Unlock()
	return nil
}

// Create shows the annotation immediately and removes it again if the
// backend rejects it. The stored annotation is returned on success.
func (m *Mirror) Create(ctx context.Context, annotation *entity.Annotation) (*entity.Annotation, error) {
	if annotation == nil {
		return nil, fmt.Errorf("annotation is required")
	}
	reqCtx, done, err := m.request(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	local := annotation.Clone()
	if local.Id == uuid.Nil {
		local.Id = uuid.New()
	}
	local.DocumentId = m.documentId

	m.mu.Lock()
	m.items = append(m.items, local)
	m.mu.Unlock()

	saved, err := m.backend.Create(reqCtx, local.Clone())
	if err != nil {
		m.mu.Lock()
		m.removeLocked(local.Id)
		m.mu.Unlock()
		m.fail("Failed to save annotation", err)
		return nil, err
	}

	m.mu.Lock()
	if !m.replaceLocked(local.Id, saved.Clone()) {
		m.logger.Debug(module, "Created annotation left the mirror before the backend answered", map[string]interface{}{
			"annotation_id": saved.Id.String(),
		})
	}
	m.mu.Unlock()
	return saved.Clone(), nil
}

// Update applies mutate to a copy of the annotation, shows the copy and
// restores the previous value if the backend call fails.
func (m *Mirror) Update(ctx context.Context, id uuid.UUID, mutate func(a *entity.Annotation) error) (*entity.Annotation, error) {
	reqCtx, done, err := m.request(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	previous := m.items[idx]
	next := previous.Clone()
	if err := mutate(next); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	next.Id = previous.Id
	next.DocumentId = previous.DocumentId
	m.items[idx] = next
	m.mu.Unlock()

	saved, err := m.backend.Update(reqCtx, next.Clone())
	if err != nil {
		m.mu.Lock()
		// A later update may already have replaced ours; only undo our own.
		if i := m.indexLocked(id); i >= 0 && m.items[i] == next {
			m.items[i] = previous
		}
		m.mu.Unlock()
		m.fail("Failed to update annotation", err)
		return nil, err
	}

	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 && m.items[i] == next {
		m.items[i] = saved.Clone()
	}
	m.mu.Unlock()
	return saved.Clone(), nil
}

// Delete removes the annotation locally and puts it back at its old index
// if the backend call fails.
func (m *Mirror) Delete(ctx context.Context, id uuid.UUID) error {
	reqCtx, done, err := m.request(ctx)
	if err != nil {
		return err
	}
	defer done()

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	removed := m.items[idx]
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	m.mu.Unlock()

	if err := m.backend.Delete(reqCtx, id); err != nil {
		m.mu.Lock()
		if m.indexLocked(id) < 0 {
			if idx > len(m.items) {
				idx = len(m.items)
			}
			m.items = append(m.items, nil)
			copy(m.items[idx+1:], m.items[idx:])
			m.items[idx] = removed
		}
		m.mu.Unlock()
		m.fail("Failed to delete annotation", err)
		return err
	}
	return nil
}

// Apply merges a change made elsewhere (another session or user) without
// calling the backend. A nil annotation with a non-nil id removes it.
func (m *Mirror) Apply(id uuid.UUID, annotation *entity.Annotation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if annotation == nil {
		m.removeLocked(id)
		return
	}
	if annotation.DocumentId != m.documentId || (m.page != nil && annotation.PageNumber != *m.page) {
		m.removeLocked(id)
		return
	}
	if !m.replaceLocked(id, annotation.Clone()) {
		m.items = append(m.items, annotation.Clone())
	}
}

func (m *Mirror) List() []*entity.Annotation {
	return m.Filter(nil)
}

func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Mirror) Get(id uuid.UUID) (*entity.Annotation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := m.indexLocked(id); idx >= 0 {
		return m.items[idx].Clone(), true
	}
	return nil, false
}

// Filter returns copies of the annotations keep accepts, in list order.
// A nil keep returns everything.
func (m *Mirror) Filter(keep func(a *entity.Annotation) bool) []*entity.Annotation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Annotation, 0, len(m.items))
	for _, a := range m.items {
		if keep == nil || keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Close aborts every in-flight request and waits for them to unwind.
// Calls made afterwards return ErrClosed.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.pending.Wait()
}

func (m *Mirror) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mirror) fail(title string, err error) {
	details := map[string]interface{}{
		"document_id": m.documentId.String(),
		"error":       err.Error(),
	}
	// Nobody is left to read a toast once the mirror is closed.
	if m.isClosed() && errors.Is(err, context.Canceled) {
		m.logger.Debug(module, "Request aborted on close", details)
		return
	}
	m.logger.Warn(module, title, details)
	m.notifier.Notify(Toast{Level: ToastError, Title: title, Message: err.Error()})
}

func (m *Mirror) indexLocked(id uuid.UUID) int {
	for i, a := range m.items {
		if a.Id == id {
			return i
		}
	}
	return -1
}

func (m *Mirror) removeLocked(id uuid.UUID) {
	if idx := m.indexLocked(id); idx >= 0 {
		m.items = append(m.items[:idx], m.items[idx+1:]...)
	}
}

func (m *Mirror) replaceLocked(id uuid.UUID, a *entity.Annotation) bool {
	if idx := m.indexLocked(id); idx >= 0 {
		m.items[idx] = a
		return true
	}
	return false
}
