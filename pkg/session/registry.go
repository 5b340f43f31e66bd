// Package session owns the design instances of concurrent logical
// sessions. A Design itself is single-threaded; the registry hands out
// one per session id and serializes nothing beyond its own map. The
// registry is bounded: when full, the session idle the longest is
// evicted.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voltlab/spicegraph/pkg/design"
	"github.com/voltlab/spicegraph/pkg/logging"
)

// DefaultCapacity bounds the registry when no capacity is given.
const DefaultCapacity = 128

var ErrSessionNotFound = errors.New("session not found")

// Session pairs a design with its registry bookkeeping.
type Session struct {
	ID        string
	Design    *design.Design
	CreatedAt time.Time
	lastUsed  time.Time
}

// Registry is a bounded, mutex-guarded session store.
type Registry struct {
	sessions map[string]*Session
	capacity int
	logger   logging.Logger
	opts     []design.Option
	mu       sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithCapacity bounds the number of live sessions.
func WithCapacity(n int) Option {
	return func(r *Registry) { r.capacity = n }
}

// WithLogger attaches a structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithDesignOptions sets the options applied to every design the
// registry creates.
func WithDesignOptions(opts ...design.Option) Option {
	return func(r *Registry) { r.opts = opts }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		capacity: DefaultCapacity,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.capacity <= 0 {
		r.capacity = DefaultCapacity
	}
	return r
}

// Create allocates a new session with a fresh design and returns it.
// When the registry is full the longest-idle session is evicted first.
func (r *Registry) Create() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.capacity {
		r.evictOldest()
	}

	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Design:    design.New(r.opts...),
		CreatedAt: now,
		lastUsed:  now,
	}
	r.sessions[s.ID] = s
	r.logger.Info("session created", logging.String("session_id", s.ID), logging.Count(len(r.sessions)))
	return s
}

// Get looks up a session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastUsed = time.Now()
	return s, nil
}

// GetOrCreate returns the named session, creating it with the given id
// when absent. Lets callers key sessions by their own identifiers.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastUsed = time.Now()
		return s
	}
	if len(r.sessions) >= r.capacity {
		r.evictOldest()
	}
	now := time.Now()
	s := &Session{
		ID:        id,
		Design:    design.New(r.opts...),
		CreatedAt: now,
		lastUsed:  now,
	}
	r.sessions[id] = s
	return s
}

// Delete removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictOldest drops the session idle the longest. Caller holds the
// write lock.
func (r *Registry) evictOldest() {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.lastUsed.Before(oldest.lastUsed) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(r.sessions, oldest.ID)
		r.logger.Warn("session evicted", logging.String("session_id", oldest.ID))
	}
}
