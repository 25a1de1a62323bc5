package sinks

import (
	"context"
	"fmt"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/handoff"
)

// HandoffMessageName is the BPMN message correlated by record id.
const HandoffMessageName = "marketplace-handoff"

// MessagePublisher publishes a correlated workflow message.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error
}

// WorkflowNotifier tells the workflow engine that a record reached the
// marketplace, so onboarding follow-up processes can continue.
type WorkflowNotifier struct {
	publisher MessagePublisher
	logger    logger.Logger
}

func NewWorkflowNotifier(publisher MessagePublisher, log logger.Logger) *WorkflowNotifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &WorkflowNotifier{publisher: publisher, logger: logger.Component(log, "workflow-notifier")}
}

func (w *WorkflowNotifier) Name() string { return "workflow-message" }

func (w *WorkflowNotifier) Consume(ctx context.Context, ev handoff.Event) error {
	vars := map[string]interface{}{
		"recordId":      ev.Record.ID,
		"role":          string(ev.Record.Role),
		"applicationId": ev.Application.ID(),
		"fragment":      ev.Fragment,
		"createdAt":     ev.Record.CreatedAt,
	}
	if err := w.publisher.PublishMessage(ctx, HandoffMessageName, ev.Record.ID, vars); err != nil {
		return fmt.Errorf("publish %s for %s: %w", HandoffMessageName, ev.Record.ID, err)
	}
	w.logger.Debug("workflow message published", map[string]interface{}{"recordId": ev.Record.ID})
	return nil
}
