package core

// sweeper.go closes sessions that nobody has touched for a while.
//
// Sessions live in memory only. Without a sweeper every abandoned browser
// tab would keep its dataset and undo history alive until restart.

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper closes idle sessions every interval until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started",
		"interval", interval,
		"idle_timeout", s.opts.IdleTimeout,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.SweepIdle(s.now()); n > 0 {
				slog.Info("closed idle sessions", "count", n)
			}
		}
	}
}

// SweepIdle closes every session last touched more than IdleTimeout before now
// and returns how many were closed. A zero IdleTimeout disables sweeping.
func (s *Service) SweepIdle(now time.Time) int {
	if s.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-s.opts.IdleTimeout)

	s.mu.RLock()
	var all []*entry
	for _, e := range s.sessions {
		all = append(all, e)
	}
	s.mu.RUnlock()

	closed := 0
	for _, e := range all {
		// A session busy with a command is not idle.
		if !e.mu.TryLock() {
			continue
		}
		idle := e.touched.Before(cutoff)
		e.mu.Unlock()
		if !idle {
			continue
		}

		s.mu.Lock()
		if _, ok := s.sessions[e.id]; ok {
			delete(s.sessions, e.id)
			closed++
			slog.Debug("session expired", "session_id", e.id, "name", e.name)
		}
		s.mu.Unlock()
	}
	return closed
}
