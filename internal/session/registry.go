package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itemgate/catalog-validator/internal/catalog"
)

// ErrSessionNotFound is returned when a session identifier is unknown
var ErrSessionNotFound = errors.New("session not found")

// Session binds a session identifier to its uploaded item batch and, once an
// observer connects, to its current subscriber. The item slice is read-only
// after creation and safe to share across goroutines.
type Session struct {
	ID        string
	Items     []catalog.Item
	CreatedAt time.Time

	subscriber catalog.Subscriber
}

// Registry manages sessions in memory. It is the single source of truth for
// session existence; sessions are lost on process restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a new session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session for the given items and returns its ID.
// It always succeeds.
func (r *Registry) Create(items []catalog.Item) string {
	s := &Session{
		ID:        uuid.New().String(),
		Items:     items,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s.ID
}

// Get retrieves a session by ID
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Attach installs sub as the session's subscriber, replacing any prior one.
// Returns ErrSessionNotFound if the session identifier is unknown.
func (r *Registry) Attach(id string, sub catalog.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	s.subscriber = sub
	return nil
}

// Subscriber returns the session's current subscriber, or nil when the
// session is unknown or no observer has attached yet.
func (r *Registry) Subscriber(id string) catalog.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	return s.subscriber
}

// Remove detaches and discards the session. Removing an unknown identifier
// is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
