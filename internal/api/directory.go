package api

import (
	"net/http"
	"time"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/directory"
)

type directoryResponse struct {
	Count   int                `json:"count"`
	Records []directory.Record `json:"records"`
}

func (s *Server) handleListDirectory(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q, err := directory.ParseQuery(params.Get("role"), params.Get("q"), params.Get("from"), params.Get("to"))
	if err != nil {
		s.writeError(w, errors.NewValidationError("Invalid directory filter", err.Error()), nil)
		return
	}

	records, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, errors.NewPersistenceError("list the directory", err), nil)
		return
	}
	matched := directory.Filter(records, q)
	writeJSON(w, http.StatusOK, directoryResponse{Count: len(matched), Records: matched})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	records, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, errors.NewPersistenceError("list the directory", err), nil)
		return
	}
	rec, ok := directory.Find(records, id)
	if !ok {
		s.writeError(w, errors.NewNotFoundError("Directory record", id), nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleSeedRecord appends a canned test profile for a role.
func (s *Server) handleSeedRecord(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}
	role, err := parseRole(req.Role)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	rec, err := directory.TestRecord(role, s.now())
	if err != nil {
		s.writeError(w, errors.NewValidationError("Cannot build test record", err.Error()), nil)
		return
	}
	if err := s.store.Append(r.Context(), rec); err != nil {
		s.writeError(w, errors.NewPersistenceError("append the test record", err), nil)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	if s.navigator == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	signal, ok := s.navigator.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, signal)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

// handleReady reports ready once the draft store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
			"time":   s.now().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}
