package finalizeapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/common/validation"
	"murmax-onboarding/internal/onboarding"
)

const (
	TaskType = "murmax.onboarding.finalize"
	// ConfigKey names the worker under workers: in the service config.
	ConfigKey = "finalize-application"
)

// Handler finalizes an application submitted by a workflow instead of the
// interactive wizard, then hands it to the marketplace directory.
type Handler struct {
	config       *Config
	store        onboarding.Store
	publisher    onboarding.Publisher
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
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		store:        opts.Store,
		publisher:    opts.Publisher,
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
	role, err := onboarding.ParseRole(input.Role)
	if err != nil {
		return nil, errors.NewUnknownRoleError(input.Role)
	}
	draft, err := onboarding.DecodeFields(role, input.Draft)
	if err != nil {
		return nil, errors.NewInvalidDraftError(err.Error())
	}
	if step, incomplete := onboarding.FirstInvalidStep(draft); incomplete {
		return nil, errors.NewInvalidDraftError(fmt.Sprintf("step %q is incomplete", step.Title))
	}
	if err := onboarding.ValidateAttachments(draft, h.config.UploadLimitMB); err != nil {
		return nil, errors.NewInvalidDraftError(err.Error())
	}

	app, err := h.store.Finalize(ctx, draft)
	if err != nil {
		return nil, errors.NewPersistenceError("finalize the application", err)
	}
	metrics.ApplicationsFinalized.WithLabelValues(string(role)).Inc()

	output := &Output{
		ApplicationID: app.ID(),
		Role:          string(role),
		FinalizedAt:   app.FinalizedAt().UTC().Format(time.RFC3339),
	}

	// The application exists from here on. A handoff failure is reported in
	// the output and does not fail the job.
	if h.publisher != nil {
		recordID, err := h.publisher.Publish(ctx, app)
		output.DirectoryRecordID = recordID
		if err != nil {
			output.HandoffError = err.Error()
			h.logger.Warn("handoff failed after finalize", map[string]interface{}{
				"applicationId": app.ID(),
				"error":         err.Error(),
			})
		}
	}

	h.logger.Info("application finalized", map[string]interface{}{
		"applicationId":     output.ApplicationID,
		"directoryRecordId": output.DirectoryRecordID,
		"role":              output.Role,
	})
	return output, nil
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
