package worker

import (
	"context"

	"github.com/bluehaven/rentals/internal/service"
	"github.com/bluehaven/rentals/pkg/logger"

	"go.uber.org/zap"
)

type verificationCleaner struct {
	verifications service.Verifications
}

func newVerificationCleaner(verifications service.Verifications) *verificationCleaner {
	return &verificationCleaner{
		verifications: verifications,
	}
}

func (c *verificationCleaner) CleanupExpired(ctx context.Context) error {
	deleted, err := c.verifications.CleanupExpired(ctx)
	if err != nil {
		return err
	}

	logger.Info("expired email verifications removed", zap.Int64("count", deleted))

	return nil
}
