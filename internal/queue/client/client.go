package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bluehaven/rentals/internal/queue/task"

	"github.com/hibiken/asynq"
)

type ctxKey int

const (
	_ ctxKey = iota
	asyncQCtxKey
)

var ErrNoClient = errors.New("asynq client is not configured")

var (
	globalClient *asynq.Client
	globalMu     sync.RWMutex
)

// GetClient returns the client bound to ctx, falling back to the global one
// set with SetClient. It's safe for concurrent use.
func GetClient(ctx context.Context) *asynq.Client {
	c := ctx.Value(asyncQCtxKey)
	if c != nil {
		client, ok := c.(*asynq.Client)
		if !ok {
			return nil
		}

		return client
	}

	globalMu.RLock()
	client := globalClient
	globalMu.RUnlock()

	return client
}

// WithClient binds client to ctx, overriding the global one.
func WithClient(ctx context.Context, client *asynq.Client) context.Context {
	return context.WithValue(ctx, asyncQCtxKey, client)
}

// SetClient replaces the global Client, and returns a
// function to restore the original value. It's safe for concurrent use.
func SetClient(client *asynq.Client) func() {
	globalMu.Lock()
	prev := globalClient
	globalClient = client
	globalMu.Unlock()
	return func() { SetClient(prev) }
}

// Enqueuer puts email tasks on the queue through the current client.
type Enqueuer struct{}

func NewEnqueuer() *Enqueuer {
	return &Enqueuer{}
}

func (e *Enqueuer) EnqueueVerificationEmail(ctx context.Context, payload task.SendVerificationEmail) error {
	t, err := task.NewSendVerificationEmailTask(payload)
	if err != nil {
		return fmt.Errorf("create send verification email task failed: %w", err)
	}

	return enqueue(ctx, t)
}

func (e *Enqueuer) EnqueuePasswordResetEmail(ctx context.Context, payload task.SendPasswordResetEmail) error {
	t, err := task.NewSendPasswordResetEmailTask(payload)
	if err != nil {
		return fmt.Errorf("create send password reset email task failed: %w", err)
	}

	return enqueue(ctx, t)
}

// EnqueueCleanupVerifications runs the cleanup outside its schedule.
func (e *Enqueuer) EnqueueCleanupVerifications(ctx context.Context) error {
	return enqueue(ctx, task.NewCleanupVerificationsTask())
}

func enqueue(ctx context.Context, t *asynq.Task) error {
	c := GetClient(ctx)
	if c == nil {
		return ErrNoClient
	}

	if _, err := c.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue %s failed: %w", t.Type(), err)
	}

	return nil
}
