package join

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/common/validation"
)

// SubmissionStore persists accepted submissions.
type SubmissionStore interface {
	Save(ctx context.Context, sub Submission) error
}

// Notifier tells the onboarding team about an accepted submission.
type Notifier interface {
	Notify(ctx context.Context, sub Submission) error
}

type Service struct {
	verifier Verifier
	store    SubmissionStore
	notifier Notifier
	logger   logger.Logger
	minScore float64
	now      func() time.Time
	newID    func() string
}

func NewService(deps ServiceDependencies, minScore float64) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Service{
		verifier: deps.Verifier,
		store:    deps.Store,
		notifier: deps.Notifier,
		logger:   logger.Component(log, "join"),
		minScore: minScore,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Submit verifies and accepts a Join page application. The returned error
// is a StandardError whose code selects the HTTP status: a missing secret is
// a configuration error, an invalid form is a validation error, a failed
// token is a verification error and anything else is internal.
func (s *Service) Submit(ctx context.Context, req Request) (Response, error) {
	resp, sub, err := s.submit(ctx, req)
	if err != nil {
		metrics.JoinSubmissions.WithLabelValues(outcomeFor(err)).Inc()
		return ResponseFor(err), err
	}
	metrics.JoinSubmissions.WithLabelValues(metrics.OutcomeOK).Inc()

	s.logger.Info("join application received", map[string]interface{}{
		"submissionId": sub.ID,
		"role":         sub.Form.Role,
	})
	return resp, nil
}

func (s *Service) submit(ctx context.Context, req Request) (Response, Submission, error) {
	if s.verifier == nil || !s.verifier.Configured() {
		return Response{}, Submission{}, errors.NewConfigurationError(MessageMissingSecret)
	}

	form := req.Form.Normalized()
	if result := validation.ValidateValue(form, GetFormSchema()); !result.Valid {
		return Response{}, Submission{}, errors.NewValidationError(MessageInvalidForm, result.Summary())
	}
	if !form.Accept {
		return Response{}, Submission{}, errors.NewValidationError(MessageNotAccepted, "accept: must be true")
	}

	verification, err := s.verifier.Verify(ctx, req.RecaptchaToken)
	if err != nil {
		return Response{}, Submission{}, errors.NewInternalError(err)
	}
	if !verification.Passed(s.minScore) {
		details := "token rejected"
		if verification.Score != nil {
			details = "score below threshold"
		}
		if len(verification.ErrorCodes) > 0 {
			details = verification.ErrorCodes[0]
		}
		return Response{}, Submission{}, errors.NewVerificationFailedError(details)
	}
	if req.Action != "" && verification.Action != "" && verification.Action != req.Action {
		s.logger.Warn("recaptcha action mismatch", map[string]interface{}{
			"expected": req.Action,
			"actual":   verification.Action,
		})
	}

	sub := Submission{
		ID:        s.newID(),
		Form:      form,
		Score:     verification.Score,
		CreatedAt: s.now().UTC(),
	}
	s.record(ctx, sub)

	return Response{Success: true, Message: MessageReceived}, sub, nil
}

// record stores and mails the submission. Neither failure rejects the
// applicant.
func (s *Service) record(ctx context.Context, sub Submission) {
	if s.store != nil {
		if err := s.store.Save(ctx, sub); err != nil {
			s.logger.Warn("join submission not stored", map[string]interface{}{
				"submissionId": sub.ID,
				"error":        err.Error(),
			})
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, sub); err != nil {
			s.logger.Warn("join notification not sent", map[string]interface{}{
				"submissionId": sub.ID,
				"error":        err.Error(),
			})
		}
	}
}

// ResponseFor renders a Submit error as the page response.
func ResponseFor(err error) Response {
	if err == nil {
		return Response{Success: true, Message: MessageReceived}
	}
	stdErr := errors.Normalize(err)
	switch stdErr.Code {
	case errors.ErrCodeInternal:
		if stdErr.Details != "" {
			return Response{Message: stdErr.Details}
		}
		return Response{Message: MessageUnexpected}
	default:
		return Response{Message: stdErr.Message}
	}
}

// StatusFor returns the HTTP status for a Submit error. Rejected input is a
// 400; every other failure is a 500.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.HTTPStatus(err) == http.StatusBadRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func outcomeFor(err error) string {
	switch {
	case errors.HasCode(err, errors.ErrCodeValidationFailed),
		errors.HasCode(err, errors.ErrCodeVerificationFailed):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}
