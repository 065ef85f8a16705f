package processor

import (
	"context"
	"fmt"

	"github.com/bluehaven/rentals/internal/worker"

	"github.com/hibiken/asynq"
)

type cleanupVerificationsProcessor struct {
	workers *worker.Workers
}

func NewCleanupVerificationsProcessor(workers *worker.Workers) *cleanupVerificationsProcessor {
	return &cleanupVerificationsProcessor{
		workers: workers,
	}
}

func (p *cleanupVerificationsProcessor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if err := p.workers.VerificationCleaner.CleanupExpired(ctx); err != nil {
		return fmt.Errorf("cleanup expired verifications failed: %w", err)
	}

	return nil
}
