package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/queue/task"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/pkg/email"
	"github.com/bluehaven/rentals/pkg/logger"
	"github.com/bluehaven/rentals/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type verificationService struct {
	verificationRepository repository.EmailVerifications
	otpGenerator           otp.Generator
	mailQueue              MailQueue
	authConfig             config.AuthConfig
	timeouts               config.Timeouts
	now                    Clock
}

func newVerificationService(
	verificationRepository repository.EmailVerifications,
	otpGenerator otp.Generator,
	mailQueue MailQueue,
	authConfig config.AuthConfig,
	timeouts config.Timeouts,
	now Clock,
) *verificationService {
	return &verificationService{
		verificationRepository: verificationRepository,
		otpGenerator:           otpGenerator,
		mailQueue:              mailQueue,
		authConfig:             authConfig,
		timeouts:               timeouts,
		now:                    now,
	}
}

func validEmail(raw string) (string, error) {
	addr := domain.NormalizeEmail(raw)
	if !email.IsEmailValid(addr) {
		return "", domain.NewValidationError("invalid email address")
	}
	return addr, nil
}

// Issue stores a fresh code and queues its delivery. Delivery problems are
// logged only: the stored code stays redeemable.
func (s *verificationService) Issue(ctx context.Context, rawEmail string, userName string) (uuid.UUID, error) {
	addr, err := validEmail(rawEmail)
	if err != nil {
		return uuid.Nil, err
	}

	return s.issue(ctx, addr, strings.TrimSpace(userName))
}

func (s *verificationService) issue(ctx context.Context, addr string, userName string) (uuid.UUID, error) {
	code, err := s.otpGenerator.Code()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate verification code failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate verification id failed: %w", err)
	}

	now := s.now().UTC()
	verification := &domain.EmailVerification{
		ID:        id,
		Email:     addr,
		Code:      code,
		UserName:  userName,
		CreatedAt: now,
		ExpiresAt: now.Add(s.authConfig.VerificationCodeTTL),
	}

	storeCtx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	if err := s.verificationRepository.Create(storeCtx, verification); err != nil {
		return uuid.Nil, storeError("verification", "store verification code failed", err)
	}

	mailCtx, cancelMail := withTimeout(ctx, s.timeouts.Mail)
	defer cancelMail()

	err = s.mailQueue.EnqueueVerificationEmail(mailCtx, task.SendVerificationEmail{
		Email:            addr,
		UserName:         userName,
		VerificationCode: code,
		ExpiresInMinutes: int(s.authConfig.VerificationCodeTTL.Minutes()),
	})
	if err != nil {
		logger.Error("enqueue verification email failed",
			zap.String("verification_id", id.String()),
			zap.Error(err),
		)
	}

	return id, nil
}

// Verify redeems code for email. Exactly one of several concurrent calls
// with the same code succeeds.
func (s *verificationService) Verify(ctx context.Context, rawEmail string, code string) error {
	addr, err := validEmail(rawEmail)
	if err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return domain.NewValidationError("verification code is required")
	}

	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	unused, err := s.verificationRepository.GetUnusedByEmail(ctx, addr)
	if err != nil {
		return storeError("verification", "load verification codes failed", err)
	}

	now := s.now().UTC()
	for i := range unused {
		if !unused[i].Redeemable(code, now) {
			continue
		}

		err := s.verificationRepository.MarkUsed(ctx, unused[i].ID, now)
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return domain.NewInvalidOrExpiredError("invalid or expired verification code")
		}
		if err != nil {
			return storeError("verification", "mark verification code used failed", err)
		}

		logger.Info("email verified", zap.String("verification_id", unused[i].ID.String()))
		return nil
	}

	return domain.NewInvalidOrExpiredError("invalid or expired verification code")
}

// Resend invalidates every outstanding code of email, then issues a new one.
func (s *verificationService) Resend(ctx context.Context, rawEmail string, userName string) (uuid.UUID, error) {
	addr, err := validEmail(rawEmail)
	if err != nil {
		return uuid.Nil, err
	}

	storeCtx, cancel := withTimeout(ctx, s.timeouts.Store)
	invalidated, err := s.verificationRepository.InvalidateUnused(storeCtx, addr)
	cancel()
	if err != nil {
		return uuid.Nil, storeError("verification", "invalidate verification codes failed", err)
	}

	logger.Debug("verification codes invalidated", zap.Int64("count", invalidated))

	return s.issue(ctx, addr, strings.TrimSpace(userName))
}

// IsVerified reports whether email has ever redeemed a code. Codes retired
// by Resend do not count.
func (s *verificationService) IsVerified(ctx context.Context, rawEmail string) (bool, error) {
	addr, err := validEmail(rawEmail)
	if err != nil {
		return false, err
	}

	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	verified, err := s.verificationRepository.ExistsUsed(ctx, addr)
	if err != nil {
		return false, storeError("verification", "check email verification failed", err)
	}

	return verified, nil
}

func (s *verificationService) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	deleted, err := s.verificationRepository.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storeError("verification", "delete expired verification codes failed", err)
	}

	return deleted, nil
}
