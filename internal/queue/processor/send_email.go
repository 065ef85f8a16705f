package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bluehaven/rentals/internal/queue/task"
	"github.com/bluehaven/rentals/internal/worker"

	"github.com/hibiken/asynq"
)

type sendVerificationEmailProcessor struct {
	workers *worker.Workers
}

func NewSendVerificationEmailProcessor(workers *worker.Workers) *sendVerificationEmailProcessor {
	return &sendVerificationEmailProcessor{
		workers: workers,
	}
}

func (p *sendVerificationEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendVerificationEmail
	err := json.Unmarshal(t.Payload(), &data)
	if err != nil {
		return fmt.Errorf("process send verification email task json unmarshal failed: %w: %w", err, asynq.SkipRetry)
	}

	if err = p.workers.EmailSender.SendVerificationEmail(ctx, data); err != nil {
		return fmt.Errorf("send verification email failed: %w", err)
	}

	return nil
}

type sendPasswordResetEmailProcessor struct {
	workers *worker.Workers
}

func NewSendPasswordResetEmailProcessor(workers *worker.Workers) *sendPasswordResetEmailProcessor {
	return &sendPasswordResetEmailProcessor{
		workers: workers,
	}
}

func (p *sendPasswordResetEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendPasswordResetEmail
	err := json.Unmarshal(t.Payload(), &data)
	if err != nil {
		return fmt.Errorf("process send password reset email task json unmarshal failed: %w: %w", err, asynq.SkipRetry)
	}

	if err = p.workers.EmailSender.SendPasswordResetEmail(ctx, data); err != nil {
		return fmt.Errorf("send password reset email failed: %w", err)
	}

	return nil
}
