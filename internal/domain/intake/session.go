package intake

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type session struct {
	mu       sync.Mutex
	form     *Form
	lastSeen atomic.Int64
}

func (s *session) touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

// Sessions holds the open forms of the process, keyed by session id. Calls
// for one session are serialized; different sessions proceed in parallel.
type Sessions struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*session
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		items: make(map[uuid.UUID]*session),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Open registers f under a new id.
func (s *Sessions) Open(f *Form) uuid.UUID {
	id := uuid.New()
	sess := &session{form: f}
	sess.touch(s.now())

	s.mu.Lock()
	s.items[id] = sess
	s.mu.Unlock()
	return id
}

// Do runs fn with exclusive access to the form of id.
func (s *Sessions) Do(id uuid.UUID, fn func(f *Form) error) error {
	s.mu.RLock()
	sess, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	defer sess.touch(s.now())
	return fn(sess.form)
}

// Close forgets id and reports whether it was open.
func (s *Sessions) Close(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep drops sessions idle for longer than the TTL and returns their ids.
func (s *Sessions) Sweep() []uuid.UUID {
	cutoff := s.now().Add(-s.ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []uuid.UUID
	for id, sess := range s.items {
		if sess.lastSeen.Load() < cutoff {
			expired = append(expired, id)
			delete(s.items, id)
		}
	}
	return expired
}

// Run sweeps every interval until ctx is done. onExpire, if set, receives
// each non-empty batch of expired ids.
func (s *Sessions) Run(ctx context.Context, interval time.Duration, onExpire func([]uuid.UUID)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if expired := s.Sweep(); len(expired) > 0 && onExpire != nil {
				onExpire(expired)
			}
		}
	}
}
