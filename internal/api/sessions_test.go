package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/deskfolio/internal/desktop"
)

func TestSessions_CreateAndGet(t *testing.T) {
	s := NewSessions(SessionsConfig{Definitions: desktop.DefaultManifest(), Viewport: desktop.DefaultViewport})

	id, mgr, err := s.Create(desktop.Viewport{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, desktop.DefaultViewport, mgr.Viewport())

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Same(t, mgr, got)

	_, err = s.Get("missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_CreateWithViewport(t *testing.T) {
	s := NewSessions(SessionsConfig{Definitions: desktop.DefaultManifest()})

	_, mgr, err := s.Create(desktop.Viewport{Width: 1280, Height: 720})
	require.NoError(t, err)
	assert.Equal(t, desktop.Viewport{Width: 1280, Height: 720}, mgr.Viewport())
}

func TestSessions_CreateInvalidManifest(t *testing.T) {
	s := NewSessions(SessionsConfig{})

	_, _, err := s.Create(desktop.Viewport{})
	require.ErrorIs(t, err, desktop.ErrInvalidManifest)
	assert.Zero(t, s.Len())
}

func TestSessions_Evict(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(SessionsConfig{Definitions: desktop.DefaultManifest(), TTL: time.Hour})
	s.now = func() time.Time { return now }

	idle, _, err := s.Create(desktop.Viewport{})
	require.NoError(t, err)
	active, _, err := s.Create(desktop.Viewport{})
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	_, err = s.Get(active)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, s.Evict())
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(idle)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Get(active)
	require.NoError(t, err)
}

func TestSessions_JanitorStops(t *testing.T) {
	s := NewSessions(SessionsConfig{Definitions: desktop.DefaultManifest(), TTL: time.Nanosecond})
	_, _, err := s.Create(desktop.Viewport{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Janitor(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestSessions_MaxSessions(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(SessionsConfig{Definitions: desktop.DefaultManifest(), TTL: time.Hour, MaxSessions: 2})
	s.now = func() time.Time { return now }

	idle, _, err := s.Create(desktop.Viewport{})
	require.NoError(t, err)
	_, _, err = s.Create(desktop.Viewport{})
	require.NoError(t, err)

	_, _, err = s.Create(desktop.Viewport{})
	require.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, 2, s.Len())

	// Once a session has gone idle its slot is reclaimed.
	now = now.Add(30 * time.Minute)
	for _, id := range s.ids() {
		if id != idle {
			_, err := s.Get(id)
			require.NoError(t, err)
		}
	}
	now = now.Add(45 * time.Minute)
	_, _, err = s.Create(desktop.Viewport{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	_, err = s.Get(idle)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func (s *Sessions) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
