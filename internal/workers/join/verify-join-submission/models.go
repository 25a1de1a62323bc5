package verifyjoinsubmission

import (
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/join"
)

// Input carries the same body the Join page posts.
type Input = join.Request

type Output struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

type HandlerOptions struct {
	Config    *Config
	Submitter join.Submitter
	Logger    logger.Logger
}
