// Package web serves the legal advisor chat over HTTP and websockets.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/raphaelgruber/legal-advisor/internal/glossary"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
	"github.com/raphaelgruber/legal-advisor/internal/session"
)

// uploadOverheadBytes leaves room for multipart framing above the document limit,
// so the pipeline can report the exact size error.
const uploadOverheadBytes = 1 << 20

// maxQueryBytes bounds a query body and a websocket frame.
const maxQueryBytes = 64 << 10

// Server exposes sessions, the glossary and statistics as a JSON API.
type Server struct {
	sessions       *session.Manager
	glossary       *glossary.Glossary
	metrics        *metrics.Collector
	logger         *slog.Logger
	maxUploadBytes int64
	upgrader       websocket.Upgrader
}

// NewServer creates the web host.
func NewServer(sessions *session.Manager, gloss *glossary.Glossary, mc *metrics.Collector, logger *slog.Logger, maxDocumentMB float64) *Server {
	return &Server{
		sessions:       sessions,
		glossary:       gloss,
		metrics:        mc,
		logger:         logger,
		maxUploadBytes: int64(maxDocumentMB*(1<<20)) + uploadOverheadBytes,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local dev
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/query", s.handleQuery)
	mux.HandleFunc("POST /api/sessions/{id}/documents", s.handleDocument)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)

	mux.HandleFunc("GET /api/glossary", s.handleGlossary)
	mux.HandleFunc("GET /api/glossary/random", s.handleRandomTerm)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.HandleFunc("GET /ws/{id}", s.handleWebsocket)

	return LoggingMiddleware(s.logger, mux)
}

// SessionView is the JSON form of a session.
type SessionView struct {
	session.Info
	Messages []session.Message `json:"messages"`
}

// QueryRequest is the body of a query call.
type QueryRequest struct {
	Query string `json:"query"`
}

// AnswerView carries the advisor's reply.
type AnswerView struct {
	Response string `json:"response"`
}

// StatsView combines runtime metrics with session counts.
type StatsView struct {
	metrics.Snapshot
	Sessions int `json:"sessions"`
}

type errorView struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, apperr.UserMessage(err, "Failed to start a conversation"))
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBytes)
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "query too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, AnswerView{Response: sess.Ask(r.Context(), req.Query)})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, apperr.UserMessage(apperr.ErrDocumentTooLarge, ""))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	answer := sess.Analyze(r.Context(), file, header.Filename, r.FormValue("query"))
	writeJSON(w, http.StatusOK, AnswerView{Response: answer})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.Reset()
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	if term := r.URL.Query().Get("term"); term != "" {
		entry, ok := s.glossary.Lookup(term)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("term %q not found", term))
			return
		}
		writeJSON(w, http.StatusOK, entry)
		return
	}
	writeJSON(w, http.StatusOK, s.glossary.Terms())
}

func (s *Server) handleRandomTerm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.glossary.Random())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsView{
		Snapshot: s.metrics.Snapshot(),
		Sessions: s.sessions.Len(),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func viewOf(sess *session.Session) SessionView {
	return SessionView{Info: sess.Info(), Messages: sess.Messages()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorView{Error: msg})
}
