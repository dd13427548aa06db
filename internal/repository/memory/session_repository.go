package memory

import (
	"time"

	"legal-annotation-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps authoring sessions in process memory. Sessions
// expire after ttl without use; expiry and deletion both close the session.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := cache.New(ttl, ttl/3)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*store.Session); ok {
			s.Close()
		}
	})
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID.String(), session, cache.DefaultExpiration)
}

// Get returns the session and extends its lifetime.
func (r *SessionRepository) Get(sessionID uuid.UUID) (*store.Session, bool) {
	x, found := r.cache.Get(sessionID.String())
	if !found {
		return nil, false
	}
	s := x.(*store.Session)
	r.cache.Set(sessionID.String(), s, cache.DefaultExpiration)
	return s, true
}

func (r *SessionRepository) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}

// ForDocument lists the live sessions on a document.
func (r *SessionRepository) ForDocument(documentID uuid.UUID) []*store.Session {
	var out []*store.Session
	for _, item := range r.cache.Items() {
		if s, ok := item.Object.(*store.Session); ok && s.DocumentID == documentID {
			out = append(out, s)
		}
	}
	return out
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
