package store

import (
	"sync"
	"time"

	"legal-annotation-be/pkg/authoring"
	"legal-annotation-be/pkg/mirror"

	"github.com/google/uuid"
)

// Session is one user's live authoring state on one document: the tool
// machine plus the optimistic copy of the annotations they see.
type Session struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	DocumentID uuid.UUID `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`

	Machine *authoring.Machine `json:"-"`
	Mirror  *mirror.Mirror     `json:"-"`

	closeOnce sync.Once
}

// Close aborts the session's in-flight requests. Safe to call repeatedly.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.Mirror != nil {
			s.Mirror.Close()
		}
	})
}
