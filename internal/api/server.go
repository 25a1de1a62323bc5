// Package api exposes the onboarding wizard, the marketplace directory and
// load board, and the Join page over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/handoff"
	"murmax-onboarding/internal/onboarding"
)

const maxBodyBytes = 1 << 20

// DirectoryStore is the part of the draft store the API reads and seeds.
type DirectoryStore interface {
	onboarding.Store
	Append(ctx context.Context, rec directory.Record) error
	List(ctx context.Context) ([]directory.Record, error)
	Ping(ctx context.Context) error
}

// SignalSource returns the latest marketplace navigation signal.
type SignalSource interface {
	Latest() (handoff.Signal, bool)
}

type Dependencies struct {
	Store         DirectoryStore
	Publisher     onboarding.Publisher
	Navigator     SignalSource
	Join          http.Handler
	Logger        logger.Logger
	UploadLimitMB int
	SessionIdle   time.Duration
}

type Server struct {
	store     DirectoryStore
	publisher onboarding.Publisher
	navigator SignalSource
	join      http.Handler
	logger    logger.Logger
	uploadMB  int
	sessions  *Sessions
	mux       *http.ServeMux
	now       func() time.Time
}

func NewServer(deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		store:     deps.Store,
		publisher: deps.Publisher,
		navigator: deps.Navigator,
		join:      deps.Join,
		logger:    logger.Component(log, "api"),
		uploadMB:  deps.UploadLimitMB,
		sessions:  NewSessions(deps.SessionIdle),
		mux:       http.NewServeMux(),
		now:       time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/onboarding/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/onboarding/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /api/onboarding/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /api/onboarding/sessions/{id}/role", s.handleSelectRole)
	s.mux.HandleFunc("PUT /api/onboarding/sessions/{id}/draft", s.handleUpdateDraft)
	s.mux.HandleFunc("PATCH /api/onboarding/sessions/{id}/draft", s.handlePatchDraft)
	s.mux.HandleFunc("POST /api/onboarding/sessions/{id}/next", s.handleNext)
	s.mux.HandleFunc("POST /api/onboarding/sessions/{id}/back", s.handleBack)
	s.mux.HandleFunc("POST /api/onboarding/sessions/{id}/save", s.handleSave)
	s.mux.HandleFunc("POST /api/onboarding/sessions/{id}/finish", s.handleFinish)
	s.mux.HandleFunc("GET /api/onboarding/steps/{role}", s.handleSteps)

	s.mux.HandleFunc("GET /api/directory", s.handleListDirectory)
	s.mux.HandleFunc("GET /api/directory/{id}", s.handleGetRecord)
	s.mux.HandleFunc("POST /api/directory/test-records", s.handleSeedRecord)
	s.mux.HandleFunc("GET /api/navigation", s.handleNavigation)

	s.mux.HandleFunc("GET /api/marketplace/loads", s.handleListLoads)
	s.mux.HandleFunc("POST /api/marketplace/loads", s.handlePostLoad)
	s.mux.HandleFunc("GET /api/marketplace/loads/{id}/ratecon", s.handleRateCon)
	s.mux.HandleFunc("POST /api/marketplace/dispatch", s.handleDispatch)
	s.mux.HandleFunc("POST /api/marketplace/instant", s.handleInstantBook)

	if s.join != nil {
		s.mux.Handle("POST /api/join", s.join)
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Sessions exposes the session registry, e.g. for idle sweeping.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

type errorBody struct {
	Error   *errors.StandardError `json:"error"`
	Session *onboarding.View      `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error, view *onboarding.View) {
	stdErr := errors.Normalize(err)
	status := errors.HTTPStatus(stdErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
	}
	if view != nil && view.Role == "" {
		view = nil
	}
	writeJSON(w, status, errorBody{Error: stdErr, Session: view})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.NewValidationError("Malformed request body", err.Error())
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewValidationError("Malformed request body", err.Error())
	}
	return body, nil
}
