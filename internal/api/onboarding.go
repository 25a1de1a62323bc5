package api

import (
	"net/http"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/onboarding"
)

type roleRequest struct {
	Role string `json:"role"`
}

type sessionResponse struct {
	ID      string          `json:"id"`
	Session onboarding.View `json:"session"`
}

type stepResponse struct {
	Position int               `json:"position"`
	Title    string            `json:"title"`
	Policy   onboarding.Policy `json:"policy"`
	Fields   []string          `json:"fields,omitempty"`
}

func (s *Server) newController() *onboarding.Controller {
	return onboarding.NewController(s.store, s.publisher,
		onboarding.WithLogger(s.logger),
		onboarding.WithUploadLimitMB(s.uploadMB),
	)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *onboarding.Controller, bool) {
	id := r.PathValue("id")
	c, ok := s.sessions.Get(id)
	if !ok {
		s.writeError(w, errors.NewNotFoundError("Session", id), nil)
		return "", nil, false
	}
	return id, c, true
}

func parseRole(raw string) (onboarding.Role, error) {
	role, err := onboarding.ParseRole(raw)
	if err != nil {
		return "", errors.NewUnknownRoleError(raw)
	}
	return role, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
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

	c := s.newController()
	view, err := c.SelectRole(r.Context(), role)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	id := s.sessions.Add(c)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Session: view})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: c.View()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.Remove(id) {
		s.writeError(w, errors.NewNotFoundError("Session", id), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectRole(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
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
	view, err := c.SelectRole(r.Context(), role)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: view})
}

// handleUpdateDraft replaces the draft with the posted field object. The
// object is decoded for the session's active role and unknown fields are
// rejected.
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	draft, err := onboarding.DecodeFields(c.Role(), body)
	if err != nil {
		view := c.View()
		s.writeError(w, errors.NewInvalidDraftError(err.Error()), &view)
		return
	}
	view, err := c.Update(draft)
	if err != nil {
		s.writeError(w, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: view})
}

// handlePatchDraft edits only the posted fields of the active draft.
func (s *Server) handlePatchDraft(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	view, err := c.Patch(body)
	if err != nil {
		s.writeError(w, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: view})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*onboarding.Controller).Next)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*onboarding.Controller).Back)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(*onboarding.Controller) (onboarding.View, error)) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := fn(c)
	if err != nil {
		s.writeError(w, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: view})
}

// handleSave reports a failed save as a notice on a 200 response; the
// draft stays in the session.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := c.SaveDraft(r.Context())
	if err != nil && !errors.HasCode(err, errors.ErrCodePersistenceFailed) {
		s.writeError(w, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: view})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.session(w, r)
	if !ok {
		return
	}
	completion, err := c.Finish(r.Context())
	if err != nil {
		s.writeError(w, err, &completion.View)
		return
	}
	writeJSON(w, http.StatusOK, completion)
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	role, err := parseRole(r.PathValue("role"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	steps := onboarding.StepsFor(role)
	out := make([]stepResponse, len(steps))
	for i, step := range steps {
		out[i] = stepResponse{
			Position: step.Position,
			Title:    step.Title,
			Policy:   step.Policy,
			Fields:   step.Fields,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"role": role, "steps": out})
}
