package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/queue/task"
	emailProvider "github.com/bluehaven/rentals/pkg/email"
)

const (
	verificationSubject  = "Verify Your Email - Blue Haven Rentals"
	passwordResetSubject = "Reset Your Password - Blue Haven Rentals"
)

type emailSender struct {
	sender  emailProvider.Sender
	config  config.EmailConfig
	timeout time.Duration
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
	timeout time.Duration,
) *emailSender {
	return &emailSender{
		sender:  sender,
		config:  config,
		timeout: timeout,
	}
}

type verificationEmailInput struct {
	UserName         string
	VerificationCode string
	ExpiresInMinutes int
}

type passwordResetEmailInput struct {
	UserName         string
	ResetURL         string
	ExpiresInMinutes int
}

func (s *emailSender) SendVerificationEmail(ctx context.Context, data task.SendVerificationEmail) error {
	templateInput := verificationEmailInput{
		UserName:         greetingName(data.UserName),
		VerificationCode: data.VerificationCode,
		ExpiresInMinutes: data.ExpiresInMinutes,
	}
	sendInput := emailProvider.SendEmailInput{Subject: verificationSubject, To: data.Email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.Verification, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := sendInput.GenerateTextBody(s.config.Templates.VerificationText, templateInput); err != nil {
		return fmt.Errorf("generate text email failed: %w", err)
	}

	return s.send(ctx, sendInput)
}

func (s *emailSender) SendPasswordResetEmail(ctx context.Context, data task.SendPasswordResetEmail) error {
	templateInput := passwordResetEmailInput{
		UserName:         greetingName(data.UserName),
		ResetURL:         data.ResetURL,
		ExpiresInMinutes: data.ExpiresInMinutes,
	}
	sendInput := emailProvider.SendEmailInput{Subject: passwordResetSubject, To: data.Email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.PasswordReset, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	return s.send(ctx, sendInput)
}

// send gives up after the mail timeout. The SMTP call itself is not
// cancellable, so it may still finish in the background.
func (s *emailSender) send(ctx context.Context, input emailProvider.SendEmailInput) error {
	if err := input.Validate(); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- s.sender.Send(input)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email failed: %w", ctx.Err())
	}
}

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
