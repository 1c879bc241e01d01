package web

// errors.go turns service errors into responses.
//
// The technical error is logged with the request id; the client receives the
// mapped user message as JSON, or as an HTML fragment for HTMX requests.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/colsplit/internal/core"
	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/export"
	"github.com/JonMunkholm/colsplit/internal/ingest"
	"github.com/JonMunkholm/colsplit/internal/logging"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/transform"
	"github.com/JonMunkholm/colsplit/internal/web/templates"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var errBadRequest = errors.New("malformed request body")

// statusRules are checked in order; the first match wins.
var statusRules = []struct {
	err    error
	status int
}{
	{core.ErrSessionNotFound, http.StatusNotFound},
	{core.ErrTooManySessions, http.StatusServiceUnavailable},
	{core.ErrTooManyUploads, http.StatusServiceUnavailable},
	{core.ErrExportUnavailable, http.StatusNotImplemented},
	{core.ErrNoFile, http.StatusBadRequest},
	{ingest.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{ingest.ErrEmptyFile, http.StatusBadRequest},
	{table.ErrRaggedRow, http.StatusBadRequest},
	{dataset.ErrColumnNotFound, http.StatusUnprocessableEntity},
	{dataset.ErrRowCountMismatch, http.StatusUnprocessableEntity},
	{dataset.ErrDuplicateColumn, http.StatusConflict},
	{transform.ErrInvalidDelimiter, http.StatusBadRequest},
	{transform.ErrInvalidWidths, http.StatusBadRequest},
	{transform.ErrInvalidMode, http.StatusBadRequest},
	{transform.ErrInvalidName, http.StatusBadRequest},
	{transform.ErrArityMismatch, http.StatusUnprocessableEntity},
	{session.ErrEmptyHistory, http.StatusConflict},
	{session.ErrNoPreview, http.StatusConflict},
	{session.ErrNoColumnSelected, http.StatusConflict},
	{export.ErrUnknownFormat, http.StatusBadRequest},
	{export.ErrInvalidTableName, http.StatusBadRequest},
	{errBadRequest, http.StatusBadRequest},
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	for _, rule := range statusRules {
		if errors.Is(err, rule.err) {
			return rule.status
		}
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Debug("request rejected", attrs...)
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}

	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
