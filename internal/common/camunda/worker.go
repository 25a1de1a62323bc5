// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"murmax-onboarding/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler processes one activated job and completes or fails it itself.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
	GetTaskType() string
}

// WorkerOptions tunes a job worker subscription.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// OpenWorker subscribes handler to its task type.
func OpenWorker(client zbc.Client, handler JobHandler, opts WorkerOptions, log logger.Logger) *Worker {
	taskType := handler.GetTaskType()
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}
	jw := step.Open()

	log.Info("worker opened", map[string]interface{}{"maxJobsActive": opts.MaxJobsActive})
	return &Worker{worker: jw, logger: log, taskType: taskType}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the subscription and waits for in-flight jobs or ctx expiry.
func (w *Worker) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		w.worker.Close()
		w.worker.AwaitClose()
		close(done)
	}()
	select {
	case <-done:
		w.logger.Info("worker stopped", nil)
	case <-ctx.Done():
		w.logger.Warn("worker stop timed out", nil)
	}
}
