package asynqserver

import (
	"context"
	"time"

	"github.com/bluehaven/rentals/internal/cache"
	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/queue/processor"
	"github.com/bluehaven/rentals/internal/queue/task"
	"github.com/bluehaven/rentals/internal/worker"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func New(cfg *config.Config, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)

	concurrency := cfg.Queue.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		RedisOptions(cfg.Cache),
		asynq.Config{
			Concurrency:  concurrency,
			LogLevel:     asynq.ErrorLevel,
			Logger:       logger.Logger().Sugar(),
			Queues:       queues,
			ErrorHandler: asynq.ErrorHandlerFunc(logTaskError),
		},
	)

	return srv, mux
}

// NewScheduler enqueues the periodic maintenance tasks.
func NewScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(
		RedisOptions(cfg.Cache),
		&asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   logger.Logger().Sugar(),
			LogLevel: asynq.ErrorLevel,
		},
	)

	if _, err := scheduler.Register(cfg.Queue.CleanupSchedule, task.NewCleanupVerificationsTask()); err != nil {
		return nil, err
	}

	return scheduler, nil
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{
			Addrs:    cfg.RedisCluster.Addresses,
			Password: cfg.RedisCluster.Password,
		}
	} else {
		opts = asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
		}
	}
	return opts
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendVerificationEmailTaskName, processor.NewSendVerificationEmailProcessor(workers))
	mux.Handle(task.SendPasswordResetEmailTaskName, processor.NewSendPasswordResetEmailProcessor(workers))
	mux.Handle(task.CleanupVerificationsTaskName, processor.NewCleanupVerificationsProcessor(workers))
	queues := map[string]int{
		task.SendEmailQueueName:   6,
		task.MaintenanceQueueName: 1,
	}
	return mux, queues
}

func logTaskError(ctx context.Context, t *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	logger.Error("asynq task failed",
		zap.String("task", t.Type()),
		zap.Int("retried", retried),
		zap.Error(err),
	)
}
