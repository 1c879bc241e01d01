package core

import "errors"

var (
	// ErrSessionNotFound is returned for an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when MaxSessions sessions are already open.
	ErrTooManySessions = errors.New("too many open sessions")

	// ErrNoFile is returned when an upload carries no file.
	ErrNoFile = errors.New("no file provided")
)

// ErrExportUnavailable is returned when a database export target is not configured.
var ErrExportUnavailable = errors.New("export target not configured")
