package session

import "errors"

var (
	// ErrEmptyHistory is returned by Undo when there is nothing to restore.
	ErrEmptyHistory = errors.New("empty history")

	// ErrNoPreview is returned when renaming or committing without candidate columns.
	ErrNoPreview = errors.New("no preview to act on")

	// ErrNoColumnSelected is returned by Preview before a source column is chosen.
	ErrNoColumnSelected = errors.New("no column selected")

	// ErrUnknownCommand is returned by Apply for a command type it does not handle.
	ErrUnknownCommand = errors.New("unknown command")
)
