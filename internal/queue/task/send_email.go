package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendVerificationEmailTaskName  = "sendVerificationEmailTask"
	SendPasswordResetEmailTaskName = "sendPasswordResetEmailTask"
	SendEmailQueueName             = "sendEmailQueue"
)

type SendVerificationEmail struct {
	Email            string `json:"email"`
	UserName         string `json:"user_name"`
	VerificationCode string `json:"verification_code"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

type SendPasswordResetEmail struct {
	Email            string `json:"email"`
	UserName         string `json:"user_name"`
	ResetURL         string `json:"reset_url"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

func NewSendVerificationEmailTask(data SendVerificationEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendVerificationEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendEmailQueueName),
	), nil
}

func NewSendPasswordResetEmailTask(data SendPasswordResetEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendPasswordResetEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendEmailQueueName),
	), nil
}
