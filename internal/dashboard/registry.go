package dashboard

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"teo-dashboard/internal/metrics"
)

// CookieName cookie с идентификатором сессии
const CookieName = "dashboard_session"

// Registry хранит сессии зрителей. Сессия, к которой не обращались
// дольше ttl, удаляется вместе со своим кэшем.
type Registry struct {
	d        *Dashboard
	sessions *expirable.LRU[string, *Session]
}

// NewRegistry создает реестр не более чем на size сессий
func NewRegistry(d *Dashboard, size int, ttl time.Duration) *Registry {
	onEvict := func(id string, s *Session) {
		metrics.ActiveSessions.Dec()
		log.Printf("Session %s expired", id)
	}
	return &Registry{
		d:        d,
		sessions: expirable.NewLRU[string, *Session](size, onEvict, ttl),
	}
}

// Session возвращает сессию по id, продлевая ее срок жизни.
// Для неизвестного или некорректного id создается новая сессия; второй результат true.
func (r *Registry) Session(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err == nil {
		if s, ok := r.sessions.Get(id); ok {
			r.sessions.Add(id, s)
			return s, false
		}
	}

	s := r.d.newSession(uuid.NewString())
	r.sessions.Add(s.ID(), s)
	metrics.ActiveSessions.Inc()
	return s, true
}

// Len число живых сессий
func (r *Registry) Len() int {
	return r.sessions.Len()
}
