package worker

import (
	"context"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/queue/task"
	"github.com/bluehaven/rentals/internal/service"
	emailProvider "github.com/bluehaven/rentals/pkg/email"
)

type Workers struct {
	EmailSender         EmailSender
	VerificationCleaner VerificationCleaner
}

type Deps struct {
	Services      *service.Services
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

type EmailSender interface {
	SendVerificationEmail(ctx context.Context, data task.SendVerificationEmail) error
	SendPasswordResetEmail(ctx context.Context, data task.SendPasswordResetEmail) error
}

type VerificationCleaner interface {
	CleanupExpired(ctx context.Context) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender:         newEmailSender(deps.EmailProvider, deps.Config.Email, deps.Config.Timeouts.Mail),
		VerificationCleaner: newVerificationCleaner(deps.Services.Verifications),
	}
}
