// Package server exposes the interview engine over HTTP. State never
// returns to the client directly: responses carry an opaque storage key
// standing in for it.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/open-event-systems/interview/internal/config"
	"github.com/open-event-systems/interview/pkg/input"
	"github.com/open-event-systems/interview/pkg/interview"
	"github.com/open-event-systems/interview/pkg/logic"
	"github.com/open-event-systems/interview/pkg/storage"
)

// Server handles interview start and update requests.
type Server struct {
	Interviews *config.Interviews
	Store      storage.Store
	Logger     *slog.Logger
	Metrics    *Metrics
}

// NewHandler creates the HTTP handler for the service.
func NewHandler(interviews *config.Interviews, store storage.Store, logger *slog.Logger) http.Handler {
	s := &Server{
		Interviews: interviews,
		Store:      store,
		Logger:     logger,
		Metrics:    NewMetrics(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/interviews/{interviewID}", s.StartInterview)
	r.Post("/update-interview", s.UpdateInterview)
	r.Get("/healthz", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))

	return r
}

// StartRequest is the body of POST /interviews/{interviewID}.
type StartRequest struct {
	Target  string         `json:"target,omitempty"`
	Context map[string]any `json:"context,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// StateResponse is the common response shape: the opaque state key plus
// the outcome of the latest update.
type StateResponse struct {
	State     string            `json:"state"`
	Completed bool              `json:"completed"`
	Target    string            `json:"target,omitempty"`
	Content   interview.Content `json:"content,omitempty"`
	UpdateURL string            `json:"update_url"`
}

// ErrorResponse is the body of every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StartInterview handles POST /interviews/{interviewID}. It stores a
// fresh state and returns its key; the client advances it via
// /update-interview.
func (s *Server) StartInterview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "interviewID")
	if s.Interviews.Get(id) == nil {
		s.writeError(w, http.StatusNotFound, "no such interview")
		return
	}

	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state := interview.NewState(body.Target, body.Context, body.Data)
	key, err := s.Store.Put(r.Context(), storage.Record{Interview: id, State: state})
	if err != nil {
		s.Logger.Error("failed to store interview state", "error", err, "interview", id)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.Metrics.Starts.WithLabelValues(id).Inc()
	s.Logger.Info("interview started", "interview", id)
	s.writeJSON(w, http.StatusOK, StateResponse{
		State:     key,
		Completed: false,
		Target:    body.Target,
		UpdateURL: "/update-interview",
	})
}

// UpdateRequest is the body of POST /update-interview.
type UpdateRequest struct {
	State     string         `json:"state"`
	Responses map[string]any `json:"responses,omitempty"`
}

// UpdateInterview handles POST /update-interview. It loads the state for
// the submitted key, applies responses, replays the script, stores the
// result under a new key and returns it.
func (s *Server) UpdateInterview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.State == "" {
		s.writeError(w, http.StatusBadRequest, "missing state")
		return
	}

	rec, err := s.Store.Get(r.Context(), body.State)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "interview state not found")
			return
		}
		s.Logger.Error("failed to load interview state", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	iv := s.Interviews.Get(rec.Interview)
	if iv == nil {
		s.Logger.Error("stored state references unknown interview", "interview", rec.Interview)
		s.writeError(w, http.StatusInternalServerError, "unknown interview")
		return
	}

	ic := interview.NewContext(iv, rec.State, s.Interviews.Evaluator())
	ic, content, err := interview.Update(ic, body.Responses)
	if err != nil {
		s.Metrics.Updates.WithLabelValues("error").Inc()
		s.writeUpdateError(w, rec.Interview, err)
		return
	}

	key, err := s.Store.Put(r.Context(), storage.Record{Interview: rec.Interview, State: ic.State})
	if err != nil {
		s.Logger.Error("failed to store interview state", "error", err, "interview", rec.Interview)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	resp := StateResponse{
		State:     key,
		Completed: ic.State.Completed,
		Content:   content,
		UpdateURL: "/update-interview",
	}
	if ic.State.Completed {
		resp.Target = ic.State.Target
	}

	s.Metrics.Updates.WithLabelValues(updateResult(ic.State, content)).Inc()
	s.Metrics.UpdateDuration.Observe(time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, resp)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func updateResult(state interview.State, content interview.Content) string {
	switch content.(type) {
	case *interview.AskContent:
		return "question"
	case *interview.ExitContent:
		return "exit"
	}
	if state.Completed {
		return "completed"
	}
	return "other"
}

// writeUpdateError maps engine errors to statuses. User-correctable
// validation problems are 422; script defects are 500.
func (s *Server) writeUpdateError(w http.ResponseWriter, id string, err error) {
	var verr *input.ValidationError
	if errors.As(err, &verr) {
		s.writeError(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}

	var cerr *interview.ConfigError
	var eerr *logic.EvalError
	var perr *logic.PointerError
	switch {
	case errors.As(err, &cerr), errors.As(err, &eerr), errors.As(err, &perr):
		s.Logger.Error("interview script error", "error", err, "interview", id)
	default:
		s.Logger.Error("interview update failed", "error", err, "interview", id)
	}
	s.writeError(w, http.StatusInternalServerError, "interview error")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
