package finalizeapplication

import (
	"encoding/json"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/onboarding"
)

// Input is read from the job variables. Draft is the bare field object of
// the role, as the wizard edits it.
type Input struct {
	Role  string          `json:"role"`
	Draft json.RawMessage `json:"draft"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	DirectoryRecordID string `json:"directoryRecordId,omitempty"`
	Role              string `json:"role"`
	FinalizedAt       string `json:"finalizedAt"` // RFC 3339
	HandoffError      string `json:"handoffError,omitempty"`
}

type HandlerOptions struct {
	Config    *Config
	Store     onboarding.Store
	Publisher onboarding.Publisher
	Logger    logger.Logger
}
