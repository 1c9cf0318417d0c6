package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/handheld"
	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Kiosk is the runtime surface served to the operator browser.
type Kiosk interface {
	State() domain.WorkflowState
	Dispatch(ctx context.Context, controlID string, input map[string]string) error
	DeletePage(ctx context.Context, n int) error
	ToggleEditMode() bool
	Document() ports.Renderable
	Report() ports.Renderable
}

// Server serves the kiosk documents and operator events.
type Server struct {
	Kiosk   Kiosk
	Streams *StreamManager

	metrics   http.Handler
	keepAlive time.Duration
	logger    *slog.Logger
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithMetrics mounts a prometheus handler on /metrics.
func WithMetrics(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithKeepAlive sets the interval of SSE keep-alive comments.
func WithKeepAlive(d time.Duration) ServerOption {
	return func(s *Server) {
		s.keepAlive = d
	}
}

// WithServerLogger configures a logger for the Server.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the kiosk HTTP handler.
func NewHandler(kiosk Kiosk, streams *StreamManager, opts ...ServerOption) http.Handler {
	s := &Server{
		Kiosk:     kiosk,
		Streams:   streams,
		keepAlive: 15 * time.Second,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/", s.GetDocument)
	r.Get("/report", s.GetReport)
	r.Get("/state", s.GetState)
	r.Post("/controls/{id}", s.PostControl)
	r.Post("/report/pages/{n}/delete", s.DeletePage)
	r.Post("/report/edit-mode", s.ToggleEditMode)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetDocument handles GET / with the operator document.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	s.renderHTML(w, s.Kiosk.Document())
}

// GetReport handles GET /report with the report container.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	s.renderHTML(w, s.Kiosk.Report())
}

func (s *Server) renderHTML(w http.ResponseWriter, doc ports.Renderable) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := doc.Render(w); err != nil {
		s.logger.Error("Document render failed", "err", err)
	}
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Kiosk.State())
}

// PostControl handles POST /controls/{id}. The body is a JSON object or a
// form submission.
func (s *Server) PostControl(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	input, err := readInput(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		s.logger.Warn("PostControl: Invalid request body", "control", id, "err", err)
		return
	}

	if err := s.Kiosk.Dispatch(r.Context(), id, input); err != nil {
		s.writeError(w, statusFor(err), err)
		s.logger.Warn("PostControl: Dispatch failed", "control", id, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Kiosk.State())
}

// DeletePage handles POST /report/pages/{n}/delete.
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid page number %q", chi.URLParam(r, "n")))
		return
	}
	if err := s.Kiosk.DeletePage(r.Context(), n); err != nil {
		s.writeError(w, statusFor(err), err)
		s.logger.Warn("DeletePage failed", "page_number", n, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Kiosk.State())
}

// ToggleEditMode handles POST /report/edit-mode.
// Stream clients learn about the change from the kiosk's edit mode observers.
func (s *Server) ToggleEditMode(w http.ResponseWriter, r *http.Request) {
	on := s.Kiosk.ToggleEditMode()
	s.writeJSON(w, http.StatusOK, map[string]bool{"edit_mode": on})
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	s.logger.Info("SSE client connected", "remote", r.RemoteAddr)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "remote", r.RemoteAddr)
			return
		case <-ticker.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":           "handheld-kiosk",
		"version":       strings.TrimSpace(handheld.Version),
		"current_state": s.Kiosk.State().CurrentState,
		"sse_clients":   s.Streams.Subscribers(),
	})
}

// statusFor maps runtime errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownControl), errors.Is(err, domain.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrControlBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func readInput(r *http.Request) (map[string]string, error) {
	input := make(map[string]string)
	if r.ContentLength == 0 {
		return input, nil
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		for k, v := range raw {
			if v != nil {
				input[k] = fmt.Sprint(v)
			}
		}
		return input, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	for k := range r.PostForm {
		input[k] = r.PostForm.Get(k)
	}
	return input, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
