package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/sales-console/pkg/logger"
	"example.com/sales-console/pkg/metrics"
	"example.com/sales-console/services/sales/internal/domain"
)

// session — одна сессия корзины.
// Мьютекс сериализует все операции над корзиной: движок рассчитан
// на одного писателя.
type session struct {
	id         string
	mu         sync.Mutex
	cart       *domain.Cart
	lastAccess time.Time
}

// sessionRegistry — реестр активных сессий корзины в памяти процесса.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
}

// newSessionRegistry создаёт пустой реестр сессий.
func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// create создаёт сессию с новой корзиной и возвращает её.
func (r *sessionRegistry) create(settings domain.Settings) *session {
	s := &session{
		id:         uuid.New().String(),
		cart:       domain.NewCart(settings),
		lastAccess: time.Now(),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	return s
}

// get возвращает сессию по ID и продлевает её жизнь.
func (r *sessionRegistry) get(id string) (*session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()

	return s, nil
}

// remove удаляет сессию из реестра.
func (r *sessionRegistry) remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}

	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return nil
}

// sweep удаляет сессии, неактивные дольше TTL. Возвращает число удалённых.
func (r *sessionRegistry) sweep() int {
	deadline := time.Now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		expired := s.lastAccess.Before(deadline)
		s.mu.Unlock()

		if expired {
			delete(r.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	return removed
}

// startJanitor запускает фоновую очистку просроченных сессий.
// Останавливается при отмене контекста.
func (r *sessionRegistry) startJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := r.sweep(); removed > 0 {
					logger.Info().
						Int("removed", removed).
						Msg("Удалены просроченные сессии корзины")
				}
			}
		}
	}()
}
