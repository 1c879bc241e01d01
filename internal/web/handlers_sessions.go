package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/colsplit/internal/core"
	"github.com/JonMunkholm/colsplit/internal/export"
	"github.com/JonMunkholm/colsplit/internal/ingest"
	"github.com/JonMunkholm/colsplit/internal/logging"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/transform"
	"github.com/JonMunkholm/colsplit/internal/web/templates"
)

// maxCommandBody bounds JSON command bodies.
const maxCommandBody = 1 << 20

type selectRequest struct {
	Column string `json:"column"`
}

type modeRequest struct {
	Mode      string `json:"mode"`
	Delimiter string `json:"delimiter"`
	Widths    []int  `json:"widths"`
	Prefix    string `json:"prefix"`
}

type renameRequest struct {
	Names []string `json:"names"`
}

type pruneRequest struct {
	DropNullRows bool `json:"dropNullRows"`
}

type exportRequest struct {
	Table string `json:"table"`
}

// handleCreateSession opens a session from a multipart CSV upload (field
// "file") or from a JSON table body.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	}

	var (
		sum core.Summary
		err error
	)
	if isJSON(r) {
		var raw table.RawTable
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			s.respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "table"
		}
		sum, err = s.service.CreateFromTable(r.Context(), name, raw)
	} else {
		sum, err = s.createFromUpload(r, maxSize)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sum)
}

func (s *Server) createFromUpload(r *http.Request, maxSize int64) (core.Summary, error) {
	if err := r.ParseMultipartForm(min(maxSize, 32<<20)); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return core.Summary{}, fmt.Errorf("%w: %v", ingest.ErrFileTooLarge, err)
		}
		return core.Summary{}, core.ErrNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return core.Summary{}, core.ErrNoFile
	}
	defer file.Close()

	return s.service.CreateFromCSV(r.Context(), header.Filename, file)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.service.List()
	out := make([]core.Summary, 0, len(ids))
	for _, id := range ids {
		sum, err := s.service.Get(id)
		if err != nil {
			// closed between List and Get
			continue
		}
		sum.Preview = table.RawTable{}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetSession returns the summary, or the preview table for HTMX.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sum, err := s.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		preview := sum.Preview
		if sum.Candidates != nil {
			preview = sum.Candidates.Preview
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.TablePreview(preview).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Close(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.run(w, r, func(sess *session.Session) error {
		return sess.SelectColumn(req.Column)
	})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !s.decode(w, r, &req) {
		return
	}
	mode, err := transform.ParseMode(req.Mode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	delim := req.Delimiter
	if mode == transform.ModeDelimiter {
		if delim, err = transform.ParseDelimiter(req.Delimiter); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	s.run(w, r, func(sess *session.Session) error {
		return sess.SetSplitMode(mode, delim, req.Widths, req.Prefix)
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(sess *session.Session) error {
		_, err := sess.Preview()
		return err
	})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.run(w, r, func(sess *session.Session) error {
		_, err := sess.RenameColumns(req.Names)
		return err
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(sess *session.Session) error { return sess.Dispatch(session.CommitPreview{}) })
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(sess *session.Session) error { return sess.Dispatch(session.UndoCommit{}) })
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, (*session.Session).CancelPreview)
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	var req pruneRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	s.run(w, r, func(sess *session.Session) error {
		_, err := sess.DropBlankColumns(req.DropNullRows)
		return err
	})
}

// handleExport streams the current table as csv, json or yaml.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name, raw, err := s.service.Export(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := strings.TrimSuffix(name, ".csv") + format.Ext()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if err := export.Encode(w, format, raw); err != nil {
		// headers are already sent
		logging.FromContext(r.Context()).Error("export encode failed", "format", format, "error", err)
	}
}

// handleExportTo writes the current table to a registered database sink.
func (s *Server) handleExportTo(w http.ResponseWriter, r *http.Request) {
	sink, ok := s.sinks[chi.URLParam(r, "target")]
	if !ok {
		s.respondError(w, r, core.ErrExportUnavailable)
		return
	}

	var req exportRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	if s.cfg.Export.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Export.Timeout)
		defer cancel()
	}

	id := chi.URLParam(r, "id")
	if err := s.service.ExportTo(ctx, id, req.Table, sink); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "exported", "table": req.Table})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// run applies fn to the session named in the URL and writes the summary.
// A rejected command still reports the unchanged session alongside the error.
func (s *Server) run(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	sum, err := s.service.Do(r.Context(), chi.URLParam(r, "id"), fn)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// decode reads a JSON command body into v. It writes the error response
// and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		s.respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return false
	}
	return true
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}
