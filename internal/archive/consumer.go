package archive

import (
	"context"

	"murmax-onboarding/internal/handoff"
)

// Consumer archives every handed-off application and its record.
type Consumer struct {
	repo *Repository
}

func NewConsumer(repo *Repository) *Consumer {
	return &Consumer{repo: repo}
}

func (c *Consumer) Name() string { return "archive" }

func (c *Consumer) Consume(ctx context.Context, ev handoff.Event) error {
	if err := c.repo.SaveApplication(ctx, ev.Application); err != nil {
		return err
	}
	return c.repo.SaveRecord(ctx, ev.Record)
}
