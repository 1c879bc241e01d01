package core

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/colsplit/internal/config"
	"github.com/JonMunkholm/colsplit/internal/export"
	"github.com/JonMunkholm/colsplit/internal/ingest"
	"github.com/JonMunkholm/colsplit/internal/logging"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/table"
)

// Options configures a Service.
type Options struct {
	Session     session.Options
	MaxSessions int
	IdleTimeout time.Duration
	MaxFileSize int64
	PreviewRows int
}

// OptionsFromConfig derives service options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Session: session.Options{
			MaxHistory: cfg.Session.MaxHistory,
			InferTypes: cfg.Session.InferTypes,
		},
		MaxSessions: cfg.Session.MaxSessions,
		IdleTimeout: cfg.Session.IdleTimeout,
		MaxFileSize: cfg.Upload.MaxFileSize,
		PreviewRows: cfg.Session.PreviewRows,
	}
}

// Service owns the open editing sessions.
type Service struct {
	opts    Options
	limiter *ParseLimiter
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
	commands int
}

type entry struct {
	mu      sync.Mutex
	id      string
	name    string
	created time.Time
	touched time.Time
	sess    *session.Session
}

// NewService creates a Service. A nil limiter allows unbounded parsing.
func NewService(opts Options, limiter *ParseLimiter) *Service {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 50
	}
	return &Service{
		opts:     opts,
		limiter:  limiter,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// CreateFromCSV parses r and opens a session over it.
func (s *Service) CreateFromCSV(ctx context.Context, name string, r io.Reader) (Summary, error) {
	if r == nil {
		return Summary{}, ErrNoFile
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return Summary{}, err
		}
		defer s.limiter.Release()
	}

	start := s.now()
	raw, err := ingest.ReadCSV(r, ingest.Options{MaxBytes: s.opts.MaxFileSize})
	if err != nil {
		return Summary{}, fmt.Errorf("parse %s: %w", name, err)
	}

	logging.FromContext(ctx).Debug("upload parsed",
		"file", name,
		"columns", len(raw.Header),
		"rows", raw.NumRows(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return s.CreateFromTable(ctx, name, raw)
}

// CreateFromTable opens a session over an already-parsed table.
func (s *Service) CreateFromTable(ctx context.Context, name string, raw table.RawTable) (Summary, error) {
	logger := logging.FromContext(ctx)

	sess, err := session.New(raw, s.opts.Session, logger)
	if err != nil {
		return Summary{}, fmt.Errorf("load %s: %w", name, err)
	}

	now := s.now()
	e := &entry{
		id:      uuid.New().String(),
		name:    name,
		created: now,
		touched: now,
		sess:    sess,
	}

	s.mu.Lock()
	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		s.mu.Unlock()
		return Summary{}, ErrTooManySessions
	}
	s.sessions[e.id] = e
	s.mu.Unlock()

	logger.Info("session opened",
		"session_id", e.id,
		"name", name,
		"columns", sess.Current().NumColumns(),
		"rows", sess.Current().RowCount(),
		"client_ip", ClientIPFromContext(ctx),
	)

	return s.summary(e), nil
}

// Do runs fn against the session with the given id while holding its lock
// and returns a summary of the resulting state. fn's error is returned
// together with a summary of the unchanged state.
func (s *Service) Do(ctx context.Context, id string, fn func(*session.Session) error) (Summary, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Summary{}, err
	}

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	opErr := fn(e.sess)
	e.touched = s.now()

	s.mu.Lock()
	s.commands++
	s.mu.Unlock()

	if opErr != nil {
		logging.ForSession(ctx, id).Debug("session command failed", "error", opErr)
	}
	return s.summary(e), opErr
}

// Get returns a summary without changing the session.
func (s *Service) Get(id string) (Summary, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Summary{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return s.summary(e), nil
}

// Export returns the session's name and its current table.
func (s *Service) Export(id string) (string, table.RawTable, error) {
	e, err := s.lookup(id)
	if err != nil {
		return "", table.RawTable{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = s.now()
	return e.name, e.sess.ExportCurrent(), nil
}

// ExportTo writes the session's current table to sink under tableName.
// The session is not locked while the sink runs.
func (s *Service) ExportTo(ctx context.Context, id, tableName string, sink export.Sink) error {
	if sink == nil {
		return ErrExportUnavailable
	}
	_, raw, err := s.Export(id)
	if err != nil {
		return err
	}

	start := s.now()
	if err := sink.Write(ctx, tableName, raw); err != nil {
		return fmt.Errorf("export %s: %w", tableName, err)
	}

	logging.ForSession(ctx, id).Info("session exported",
		"table", tableName,
		"rows", raw.NumRows(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close drops a session.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns the open session ids, oldest first.
func (s *Service) List() []string {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].created.Before(entries[j].created)
	})
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// Status reports current load.
func (s *Service) Status() Status {
	s.mu.RLock()
	st := Status{
		Sessions:      len(s.sessions),
		MaxSessions:   s.opts.MaxSessions,
		TotalCommands: s.commands,
	}
	s.mu.RUnlock()

	if s.limiter != nil {
		st.ActiveParses = s.limiter.Active()
		st.MaxParses = s.limiter.MaxConcurrent()
	}
	return st
}

func (s *Service) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

// summary must be called with e.mu held.
func (s *Service) summary(e *entry) Summary {
	return summarize(e.id, e.name, e.sess.State(), s.opts.PreviewRows, e.created, e.touched)
}
