package panel

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type session struct {
	panel     *Panel
	expiresAt time.Time
}

// Sessions keeps one Panel per login session
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	log      *zap.Logger
	now      func() time.Time
}

// NewSessions creates an empty session registry
func NewSessions(log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{
		sessions: make(map[string]*session),
		log:      log,
		now:      time.Now,
	}
}

// Get returns the panel of a session, creating it with create when missing
// or expired. expiresAt is the end of the session's token lifetime.
func (s *Sessions) Get(id string, expiresAt time.Time, create func() *Panel) *Panel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && s.now().Before(sess.expiresAt) {
		return sess.panel
	}

	p := create()
	s.sessions[id] = &session{panel: p, expiresAt: expiresAt}
	s.log.Debug("panel session created", zap.String("session", id))
	return p
}

// Lookup returns the panel of a live session
func (s *Sessions) Lookup(id string) (*Panel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || !s.now().Before(sess.expiresAt) {
		return nil, false
	}
	return sess.panel, true
}

// Drop discards a session
func (s *Sessions) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of tracked sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("expired panel sessions removed", zap.Int("count", n))
			}
		}
	}
}
