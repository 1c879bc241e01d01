package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference.
//
// # Error Codes Reference
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Column not found: The named column does not exist
//	         Action: Refresh the column list and pick an existing column
//	COL002 - Duplicate column: A column with this name already exists
//	         Action: Choose names that do not clash with existing columns
//	COL003 - Invalid name: A column name is empty
//	         Action: Give every new column a non-empty name
//
// # Split Errors (SPL001-SPL099)
//
//	SPL001 - Invalid delimiter: The delimiter is empty
//	         Action: Enter at least one character; use \t for a tab
//	SPL002 - Invalid widths: Widths must be positive whole numbers
//	         Action: Enter widths such as 5,5,5
//	SPL003 - Invalid mode: Unknown split mode
//	         Action: Use "delimiter" or "fixed-width"
//
// # Edit Errors
//
//	REN001 - Arity mismatch: Wrong number of names for the new columns
//	         Action: Provide exactly one name per previewed column
//	CMT001 - Row count mismatch: New columns do not match the table length
//	         Action: Preview the split again before committing
//	HIS001 - Empty history: There is nothing to undo
//	         Action: No action needed
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No preview: There is no pending split
//	         Action: Preview a split first
//	SES002 - Session not found: The session has expired or was closed
//	         Action: Upload the file again to start a new session
//	SES003 - Too many sessions: The server has reached its session limit
//	         Action: Close unused sessions or try again later
//	SES004 - No column selected: Choose a column before previewing
//	         Action: Select the column to split
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large (pattern "file too large")
//	FILE002 - Invalid CSV (patterns "parse error", "more fields than header")
//	FILE003 - Encoding error (pattern "encoding")
//	FILE004 - No file (pattern "no file provided")
//	FILE005 - Empty file (pattern "empty file")
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Unknown format: Export format is not supported
//	EXP002 - Invalid table name: Destination table name is empty
//	EXP003 - Export unavailable: No database export target is configured
//
// # Upload and Transport Errors
//
//	UPL002 - System busy (pattern "too many uploads")
//	UPL004 - Request cancelled (context.Canceled)
//	UPL005 - Request timeout (context.DeadlineExceeded)
//	DB004  - Connection refused (pattern "connection refused")
//	DB005  - Connection reset (pattern "connection reset")
//	RATE001 - Rate limited (pattern "rate limit")
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// MapError first walks the sentinel table with errors.Is, so wrapped errors
// from the dataset, transform, session and ingest packages resolve exactly.
// Errors without a sentinel fall back to case-insensitive substring patterns;
// the first match wins, so more specific patterns come first.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/export"
	"github.com/JonMunkholm/colsplit/internal/ingest"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	// Column errors
	{dataset.ErrColumnNotFound, UserMessage{
		Message: "Column not found",
		Action:  "Refresh the column list and pick an existing column",
		Code:    "COL001",
	}},
	{dataset.ErrDuplicateColumn, UserMessage{
		Message: "A column with this name already exists",
		Action:  "Choose names that do not clash with existing columns",
		Code:    "COL002",
	}},
	{transform.ErrInvalidName, UserMessage{
		Message: "Column names cannot be empty",
		Action:  "Give every new column a non-empty name",
		Code:    "COL003",
	}},

	// Split errors
	{transform.ErrInvalidDelimiter, UserMessage{
		Message: "The delimiter is empty",
		Action:  `Enter at least one character; use \t for a tab`,
		Code:    "SPL001",
	}},
	{transform.ErrInvalidWidths, UserMessage{
		Message: "Widths must be positive whole numbers",
		Action:  "Enter widths such as 5,5,5",
		Code:    "SPL002",
	}},
	{transform.ErrInvalidMode, UserMessage{
		Message: "Unknown split mode",
		Action:  `Use "delimiter" or "fixed-width"`,
		Code:    "SPL003",
	}},

	// Edit errors
	{transform.ErrArityMismatch, UserMessage{
		Message: "Wrong number of names for the new columns",
		Action:  "Provide exactly one name per previewed column",
		Code:    "REN001",
	}},
	{dataset.ErrRowCountMismatch, UserMessage{
		Message: "New columns do not match the table length",
		Action:  "Preview the split again before committing",
		Code:    "CMT001",
	}},
	{session.ErrEmptyHistory, UserMessage{
		Message: "There is nothing to undo",
		Action:  "No action needed",
		Code:    "HIS001",
	}},

	// Session errors
	{session.ErrNoPreview, UserMessage{
		Message: "There is no pending split",
		Action:  "Preview a split first",
		Code:    "SES001",
	}},
	{ErrSessionNotFound, UserMessage{
		Message: "Session not found",
		Action:  "The session may have expired. Upload the file again to start a new session",
		Code:    "SES002",
	}},
	{ErrTooManySessions, UserMessage{
		Message: "The server has reached its session limit",
		Action:  "Close unused sessions or try again later",
		Code:    "SES003",
	}},
	{session.ErrNoColumnSelected, UserMessage{
		Message: "No column selected",
		Action:  "Select the column to split",
		Code:    "SES004",
	}},

	// File errors
	{ingest.ErrFileTooLarge, UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{table.ErrRaggedRow, UserMessage{
		Message: "File is not a valid CSV",
		Action:  "A row has more fields than the header; check quoting and delimiters",
		Code:    "FILE002",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}},
	{ingest.ErrEmptyFile, UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header row",
		Code:    "FILE005",
	}},

	// Export errors
	{export.ErrUnknownFormat, UserMessage{
		Message: "Export format is not supported",
		Action:  "Use csv, json or yaml",
		Code:    "EXP001",
	}},
	{export.ErrInvalidTableName, UserMessage{
		Message: "Destination table name is empty",
		Action:  "Enter a table name",
		Code:    "EXP002",
	}},
	{ErrExportUnavailable, UserMessage{
		Message: "Database export is not configured",
		Action:  "Download the table instead, or ask an administrator to configure export",
		Code:    "EXP003",
	}},

	// Upload errors
	{ErrTooManyUploads, UserMessage{
		Message: "Too many uploads in progress",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors that carry no sentinel, such as encoding/csv
// parse errors and driver errors from database export.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg:     UserMessage{Message: "File exceeds maximum size limit", Action: "Split the file into smaller chunks", Code: "FILE001"},
	},
	{
		pattern: "request body too large",
		msg:     UserMessage{Message: "File exceeds maximum size limit", Action: "Split the file into smaller chunks", Code: "FILE001"},
	},
	{
		pattern: "parse error",
		msg:     UserMessage{Message: "File is not a valid CSV", Action: "Ensure the file is comma-separated with balanced quotes", Code: "FILE002"},
	},
	{
		pattern: "encoding",
		msg:     UserMessage{Message: "File contains invalid characters", Action: "Save the file as UTF-8", Code: "FILE003"},
	},
	{
		pattern: "no file provided",
		msg:     UserMessage{Message: "No file was selected", Action: "Please select a CSV file to upload", Code: "FILE004"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB004"},
	},
	{
		pattern: "connection reset",
		msg:     UserMessage{Message: "Database connection was interrupted", Action: "Please try again", Code: "DB005"},
	},
	{
		pattern: "rate limit",
		msg:     UserMessage{Message: "Too many requests", Action: "Please wait a moment before trying again", Code: "RATE001"},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := svc.Do(ctx, id, func(s *session.Session) error { return s.Dispatch(session.UndoCommit{}) })
//	msg := MapError(err)
//	// msg.Code == "HIS001" when there was nothing to undo
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
