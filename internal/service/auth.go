package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/queue/task"
	"github.com/bluehaven/rentals/pkg/hash"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	passwordResetSecretBytes = 40
	// width of password_reset.token
	passwordResetTokenLength = 64
)

type SignUpInput struct {
	Email    string      `json:"email" validate:"required,email,max=254"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	FullName string      `json:"full_name" validate:"required,min=2,max=101"`
	Role     domain.Role `json:"role" validate:"required,role"`
}

type SignInInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	UserAgent string `json:"-"`
	UserIP    string `json:"-"`
}

type Tokens struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken uuid.UUID
	RefreshTTL   time.Duration
}

// SignUp creates the account of an email that already redeemed a code.
func (s *userService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	input.Email = domain.NormalizeEmail(input.Email)

	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	verified, err := s.verifications.IsVerified(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if !verified {
		return nil, domain.NewForbiddenError("email address is not verified")
	}

	return s.createAccount(ctx, input, true)
}

// SignUpWithoutVerification skips the verification gate. The route is only
// registered when AUTH_ALLOW_UNVERIFIED_SIGNUP is set.
func (s *userService) SignUpWithoutVerification(ctx context.Context, input SignUpInput) (*domain.User, error) {
	input.Email = domain.NormalizeEmail(input.Email)

	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	logger.Warn("account created without email verification", zap.String("email", input.Email))

	return s.createAccount(ctx, input, false)
}

func (s *userService) createAccount(ctx context.Context, input SignUpInput, verified bool) (*domain.User, error) {
	if !input.Role.SignupAllowed() {
		return nil, domain.NewForbiddenError("this role cannot be chosen at signup")
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id failed: %w", err)
	}

	now := s.now().UTC()
	fullName := strings.Join(strings.Fields(input.FullName), " ")
	firstName, lastName, _ := strings.Cut(fullName, " ")

	identity := &domain.AuthIdentity{
		ID:           id,
		Email:        input.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	user := &domain.User{
		ID:          id,
		FirstName:   firstName,
		LastName:    lastName,
		FullName:    fullName,
		Email:       input.Email,
		Role:        input.Role,
		IDDocuments: domain.StringList{},
		IsVerified:  verified,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.authIdentityRepository.CreateWithTx(ctx, tx, identity); err != nil {
			return err
		}
		return s.userRepository.CreateWithTx(ctx, tx, user)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, domain.NewConflictError("an account with this email already exists")
		}
		return nil, storeError("user", "create account failed", err)
	}

	logger.Info("account created", zap.String("user_id", id.String()), zap.String("role", string(input.Role)))

	return user, nil
}

func (s *userService) SignIn(ctx context.Context, input SignInInput) (*Tokens, *domain.User, error) {
	input.Email = domain.NormalizeEmail(input.Email)

	if err := domain.Validate(input); err != nil {
		return nil, nil, err
	}

	storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	identity, err := s.authIdentityRepository.GetByEmail(storeCtx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.NewUnauthorizedError("invalid email or password")
		}
		return nil, nil, storeError("user", "load credentials failed", err)
	}

	if err := s.hasher.Compare(identity.PasswordHash, input.Password); err != nil {
		if errors.Is(err, hash.ErrMismatchedPassword) {
			return nil, nil, domain.NewUnauthorizedError("invalid email or password")
		}
		return nil, nil, fmt.Errorf("compare password failed: %w", err)
	}

	user, err := s.userRepository.GetByID(storeCtx, identity.ID)
	if err != nil {
		return nil, nil, storeError("user", "load user failed", err)
	}

	if !user.IsActive {
		return nil, nil, domain.NewForbiddenError("account is deactivated")
	}

	tokens, err := s.createSession(storeCtx, user.ID, input.UserAgent, input.UserIP)
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

func (s *userService) createSession(ctx context.Context, userID uuid.UUID, userAgent string, userIP string) (*Tokens, error) {
	var (
		res Tokens
		err error
	)

	res.AccessToken, res.AccessTTL, err = s.tokenManager.NewJWT(userID.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	res.RefreshToken, res.RefreshTTL, err = s.tokenManager.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token failed: %w", err)
	}

	refreshSessionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate refresh session id failed: %w", err)
	}

	now := s.now().UTC()
	refreshSession := &domain.RefreshSession{
		ID:           refreshSessionID,
		UserID:       userID,
		RefreshToken: res.RefreshToken,
		UserAgent:    userAgent,
		IP:           userIP,
		ExpiresIn:    now.Add(res.RefreshTTL),
		CreatedAt:    now,
	}

	if err := s.refreshSessionRepository.Create(ctx, refreshSession); err != nil {
		return nil, storeError("session", "create refresh session failed", err)
	}

	return &res, nil
}

// RefreshTokens rotates a refresh token. The old session is removed even
// when the new one cannot be created.
func (s *userService) RefreshTokens(ctx context.Context, refreshToken string, userAgent string, userIP string) (*Tokens, error) {
	token, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	ctx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	session, err := s.refreshSessionRepository.GetByToken(ctx, *token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewUnauthorizedError("invalid refresh token")
		}
		return nil, storeError("session", "load refresh session failed", err)
	}

	if err := s.refreshSessionRepository.Delete(ctx, session.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, storeError("session", "delete refresh session failed", err)
	}

	if session.Expired(s.now()) {
		return nil, domain.NewUnauthorizedError("refresh token expired")
	}

	user, err := s.userRepository.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewUnauthorizedError("account no longer exists")
		}
		return nil, storeError("user", "load user failed", err)
	}

	if !user.IsActive {
		return nil, domain.NewForbiddenError("account is deactivated")
	}

	return s.createSession(ctx, user.ID, userAgent, userIP)
}

func (s *userService) SignOut(ctx context.Context, session domain.Session) error {
	ctx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	if _, err := s.refreshSessionRepository.DeleteByUserID(ctx, session.UserID); err != nil {
		return storeError("session", "delete refresh sessions failed", err)
	}

	return nil
}

// RequestPasswordReset never tells the caller whether the email is known.
func (s *userService) RequestPasswordReset(ctx context.Context, rawEmail string) error {
	addr, err := validEmail(rawEmail)
	if err != nil {
		return err
	}

	storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	identity, err := s.authIdentityRepository.GetByEmail(storeCtx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("password reset for unknown email")
			return nil
		}
		return storeError("user", "load credentials failed", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate password reset id failed: %w", err)
	}

	now := s.now().UTC()
	reset := &domain.PasswordReset{
		ID:         id,
		IdentityID: identity.ID,
		Token:      s.otpGenerator.RandomSecret(passwordResetSecretBytes),
		ExpiresAt:  now.Add(s.config.Auth.PasswordResetTTL),
		CreatedAt:  now,
	}

	if err := s.passwordResetRepository.Create(storeCtx, reset); err != nil {
		return storeError("password reset", "store password reset failed", err)
	}

	var userName string
	if user, err := s.userRepository.GetByID(storeCtx, identity.ID); err == nil {
		userName = user.DisplayName()
	}

	mailCtx, cancelMail := withTimeout(ctx, s.config.Timeouts.Mail)
	defer cancelMail()

	err = s.mailQueue.EnqueuePasswordResetEmail(mailCtx, task.SendPasswordResetEmail{
		Email:            addr,
		UserName:         userName,
		ResetURL:         resetURL(s.config.Email.Templates.ResetURL, reset.Token),
		ExpiresInMinutes: int(s.config.Auth.PasswordResetTTL.Minutes()),
	})
	if err != nil {
		logger.Error("enqueue password reset email failed", zap.String("identity_id", identity.ID.String()), zap.Error(err))
	}

	return nil
}

func resetURL(base string, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String()
}

// ConfirmPasswordReset sets the new password and signs out every session.
func (s *userService) ConfirmPasswordReset(ctx context.Context, token string, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError("reset token is required")
	}

	if len(newPassword) < 8 || len(newPassword) > 72 {
		return domain.NewValidationError("password must be between 8 and 72 characters")
	}

	ctx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	reset, err := s.passwordResetRepository.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewInvalidOrExpiredError("invalid or expired reset token")
		}
		return storeError("password reset", "load password reset failed", err)
	}

	now := s.now().UTC()
	if !reset.Usable(now) {
		return domain.NewInvalidOrExpiredError("invalid or expired reset token")
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.passwordResetRepository.MarkUsedWithTx(ctx, tx, reset.ID, now); err != nil {
			return err
		}
		return s.authIdentityRepository.UpdatePasswordWithTx(ctx, tx, reset.IdentityID, passwordHash)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return domain.NewInvalidOrExpiredError("invalid or expired reset token")
		}
		return storeError("password reset", "reset password failed", err)
	}

	if _, err := s.refreshSessionRepository.DeleteByUserID(ctx, reset.IdentityID); err != nil {
		logger.Error("delete refresh sessions after password reset failed", zap.Error(err))
	}

	return nil
}

// Authenticate turns an access token subject into a session. Users are read
// through the cache.
func (s *userService) Authenticate(ctx context.Context, subject string) (domain.Session, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return domain.Session{}, domain.NewUnauthorizedError("invalid token subject")
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.Session{}, domain.NewUnauthorizedError("account no longer exists")
		}
		return domain.Session{}, err
	}

	if !user.IsActive {
		return domain.Session{}, domain.NewForbiddenError("account is deactivated")
	}

	return domain.NewSession(user), nil
}
