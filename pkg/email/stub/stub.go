// Package stub provides a Sender that only logs, for environments without SMTP.
package stub

import (
	"github.com/bluehaven/rentals/pkg/email"
	"github.com/bluehaven/rentals/pkg/logger"

	"go.uber.org/zap"
)

type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(input email.SendEmailInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	logger.Info("email delivery disabled, message logged",
		zap.String("to", input.To),
		zap.String("subject", input.Subject),
		zap.Int("html_bytes", len(input.Body)),
		zap.String("text", input.TextBody),
	)

	return nil
}
