package task

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	CleanupVerificationsTaskName = "cleanupExpiredVerificationsTask"
	MaintenanceQueueName         = "maintenanceQueue"
)

// NewCleanupVerificationsTask has no payload. Unique keeps a slow run from
// piling up behind the next scheduled one.
func NewCleanupVerificationsTask() *asynq.Task {
	return asynq.NewTask(
		CleanupVerificationsTaskName,
		nil,
		asynq.MaxRetry(3),
		asynq.Queue(MaintenanceQueueName),
		asynq.Unique(10*time.Minute),
	)
}
