package join

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
)

const maxBodyBytes = 64 << 10

// Submitter is implemented by Service.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Response, error)
}

// Handler serves POST /api/join.
type Handler struct {
	submitter Submitter
	logger    logger.Logger
}

func NewHandler(submitter Submitter, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{submitter: submitter, logger: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeResponse(w, http.StatusMethodNotAllowed, Response{Message: "Method not allowed"})
		return
	}

	var req Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, Response{Message: "Malformed request body"})
		return
	}

	resp, err := h.submitter.Submit(r.Context(), req)
	if err != nil {
		status := StatusFor(err)
		h.logger.Warn("join submission refused", map[string]interface{}{
			"status":    status,
			"errorCode": string(errors.Normalize(err).Code),
		})
		writeResponse(w, status, resp)
		return
	}
	writeResponse(w, http.StatusOK, resp)
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
