package verifyjoinsubmission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/common/validation"
	"murmax-onboarding/internal/join"
)

const (
	TaskType = "murmax.join.verify"
	// ConfigKey names the worker under workers: in the service config.
	ConfigKey = "verify-join-submission"
)

// Handler runs a Join page submission that arrived through a workflow. A
// rejected submission throws JOIN_REJECTED so the process can branch on it.
type Handler struct {
	config       *Config
	submitter    join.Submitter
	logger       logger.Logger
	errorHandler *errors.JobErrorHandler
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		submitter:    opts.Submitter,
		logger:       log,
		errorHandler: errors.NewJobErrorHandler(log),
	}, nil
}

func (h *Handler) GetTaskType() string { return TaskType }

func (h *Handler) IsEnabled() bool { return h.config.Enabled }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	raw := []byte(job.Variables)
	if result := validation.ValidateJSON(raw, GetInputSchema()); !result.Valid {
		return nil, errors.NewValidationError("Invalid job variables", result.Summary())
	}
	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewValidationError("Invalid job variables", err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	resp, err := h.submitter.Submit(ctx, *input)
	if err == nil {
		return &Output{Success: true, Message: resp.Message, StatusCode: http.StatusOK}, nil
	}

	status := join.StatusFor(err)
	switch {
	case status == http.StatusBadRequest:
		return nil, errors.NewJoinRejectedError(resp.Message, err)
	case errors.HasCode(err, errors.ErrCodeInternal):
		// Siteverify could not be reached; let the engine retry.
		return nil, errors.NewExternalServiceError("recaptcha", err)
	default:
		return nil, err
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
