package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/deskfolio/internal/desktop"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted desktop sessions.
	ErrSessionNotFound = errors.New("desktop session not found")

	// ErrTooManySessions is returned when every session slot is in use.
	ErrTooManySessions = errors.New("too many desktop sessions")
)

// DefaultMaxSessions bounds live sessions when no limit is configured.
const DefaultMaxSessions = 1000

// Sessions owns one window manager per visitor.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	defs     []desktop.Definition
	viewport desktop.Viewport
	ttl      time.Duration
	max      int
	logger   *slog.Logger
	now      func() time.Time
}

type session struct {
	mgr      *desktop.Manager
	lastSeen time.Time
}

type SessionsConfig struct {
	Definitions []desktop.Definition
	Viewport    desktop.Viewport
	// TTL is how long a session may sit idle before the janitor evicts it.
	TTL time.Duration
	// MaxSessions caps live sessions; idle ones are evicted first when full.
	MaxSessions int
	Logger      *slog.Logger
}

func NewSessions(cfg SessionsConfig) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Sessions{
		sessions: make(map[string]*session),
		defs:     cfg.Definitions,
		viewport: cfg.Viewport,
		ttl:      cfg.TTL,
		max:      cfg.MaxSessions,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Create starts a session laid out for viewport, or the configured default
// when viewport is zero.
func (s *Sessions) Create(viewport desktop.Viewport) (string, *desktop.Manager, error) {
	if viewport == (desktop.Viewport{}) {
		viewport = s.viewport
	}
	mgr, err := desktop.NewManager(s.defs, desktop.Config{Viewport: viewport, Logger: s.logger})
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()
	s.mu.Lock()
	if len(s.sessions) >= s.max {
		s.evictLocked()
	}
	if len(s.sessions) >= s.max {
		s.mu.Unlock()
		s.logger.Warn("desktop session limit reached", "max", s.max)
		return "", nil, ErrTooManySessions
	}
	s.sessions[id] = &session{mgr: mgr, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("desktop session created", "session", id)
	return id, mgr, nil
}

// Get returns the manager for id and marks the session as active.
func (s *Sessions) Get(id string) (*desktop.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess.mgr, nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops sessions idle for longer than the TTL.
func (s *Sessions) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *Sessions) evictLocked() int {
	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Janitor evicts idle sessions every interval until ctx is done.
func (s *Sessions) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.logger.Info("evicted idle desktop sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}
