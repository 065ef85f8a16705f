package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bluehaven/rentals/internal/cache"
	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/pkg/auth"
	"github.com/bluehaven/rentals/pkg/hash"
	"github.com/bluehaven/rentals/pkg/logger"
	"github.com/bluehaven/rentals/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxIDDocuments = 2

type userService struct {
	transactor               repository.Transactor
	userRepository           repository.Users
	authIdentityRepository   repository.AuthIdentities
	refreshSessionRepository repository.RefreshSession
	passwordResetRepository  repository.PasswordResets
	posts                    *postService
	verifications            Verifications
	storage                  storage.ObjectStorage
	userCache                cache.UserCache
	hasher                   hash.PasswordHasher
	tokenManager             auth.TokenManager
	otpGenerator             otp.Generator
	mailQueue                MailQueue
	config                   *config.Config
	now                      Clock
}

func newUserService(
	repos *repository.Repositories,
	posts *postService,
	verifications Verifications,
	storage storage.ObjectStorage,
	userCache cache.UserCache,
	hasher hash.PasswordHasher,
	tokenManager auth.TokenManager,
	otpGenerator otp.Generator,
	mailQueue MailQueue,
	config *config.Config,
	now Clock,
) *userService {
	return &userService{
		transactor:               repos.Transactor,
		userRepository:           repos.Users,
		authIdentityRepository:   repos.AuthIdentities,
		refreshSessionRepository: repos.RefreshSession,
		passwordResetRepository:  repos.PasswordResets,
		posts:                    posts,
		verifications:            verifications,
		storage:                  storage,
		userCache:                userCache,
		hasher:                   hasher,
		tokenManager:             tokenManager,
		otpGenerator:             otpGenerator,
		mailQueue:                mailQueue,
		config:                   config,
		now:                      now,
	}
}

// loadUser reads through the cache. Cache failures only cost a store read.
func (s *userService) loadUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userCache.Get(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("user cache get failed", zap.String("user_id", id.String()), zap.Error(err))
	}

	storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	user, err = s.userRepository.GetByID(storeCtx, id)
	if err != nil {
		return nil, storeError("user", "load user failed", err)
	}

	if err := s.userCache.Set(ctx, user); err != nil {
		logger.Warn("user cache set failed", zap.String("user_id", id.String()), zap.Error(err))
	}

	return user, nil
}

func (s *userService) forget(ctx context.Context, id uuid.UUID) {
	if err := s.userCache.Delete(ctx, id); err != nil {
		logger.Warn("user cache delete failed", zap.String("user_id", id.String()), zap.Error(err))
	}
}

func (s *userService) save(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = s.now().UTC()

	storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	if err := s.userRepository.Update(storeCtx, user); err != nil {
		return storeError("user", "update user failed", err)
	}

	s.forget(ctx, user.ID)

	return nil
}

func (s *userService) GetProfile(ctx context.Context, session domain.Session) (*domain.User, error) {
	return s.loadUser(ctx, session.UserID)
}

func applyName(user *domain.User, firstName, lastName *string) {
	if firstName != nil {
		user.FirstName = strings.TrimSpace(*firstName)
	}
	if lastName != nil {
		user.LastName = strings.TrimSpace(*lastName)
	}
	if firstName != nil || lastName != nil {
		user.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
}

func (s *userService) UpdateProfile(ctx context.Context, session domain.Session, update domain.ProfileUpdate) (*domain.User, error) {
	if err := domain.Validate(update); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	applyName(user, update.FirstName, update.LastName)

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UploadProfileImage replaces the profile picture. The previous file is
// removed best effort.
func (s *userService) UploadProfileImage(ctx context.Context, session domain.Session, image ImageUpload) (*domain.User, error) {
	limits := domain.ImageLimits{MaxBytes: s.config.Storage.MaxImageBytes, MaxCount: 1}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = domain.MaxImageBytes
	}

	if err := domain.ValidateImages([]domain.ImageMeta{image.meta()}, 0, limits); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	uploadCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	urls, err := uploadImages(uploadCtx, s.storage, storage.ProfileFolder(user.ID), []ImageUpload{image})
	cancel()
	if err != nil {
		return nil, err
	}

	previous := user.ProfileImage
	user.ProfileImage = &urls[0]

	if err := s.save(ctx, user); err != nil {
		removeObjects(context.WithoutCancel(ctx), s.storage, urls)
		return nil, err
	}

	if previous != nil {
		if errs := removeObjects(ctx, s.storage, []string{*previous}); len(errs) > 0 {
			logger.Warn("remove previous profile image failed", zap.String("user_id", user.ID.String()), zap.Errors("errors", errs))
		}
	}

	return user, nil
}

func (s *userService) UploadIDDocument(ctx context.Context, session domain.Session, image ImageUpload) (*domain.User, error) {
	user, err := s.loadUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	limits := domain.ImageLimits{MaxBytes: s.config.Storage.MaxImageBytes, MaxCount: maxIDDocuments}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = domain.MaxImageBytes
	}

	if err := domain.ValidateImages([]domain.ImageMeta{image.meta()}, len(user.IDDocuments), limits); err != nil {
		return nil, err
	}

	uploadCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	urls, err := uploadImages(uploadCtx, s.storage, storage.IDDocumentsFolder(user.ID), []ImageUpload{image})
	cancel()
	if err != nil {
		return nil, err
	}

	user.IDDocuments = append(user.IDDocuments, urls...)

	if err := s.save(ctx, user); err != nil {
		removeObjects(context.WithoutCancel(ctx), s.storage, urls)
		return nil, err
	}

	return user, nil
}

func (s *userService) List(ctx context.Context, session domain.Session, page, limit int, filters *repository.UserFilters) ([]domain.User, int64, error) {
	if err := requireAdmin(session); err != nil {
		return nil, 0, err
	}

	limit, offset := pagination(page, limit)

	ctx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	users, err := s.userRepository.GetAll(ctx, limit, offset, filters)
	if err != nil {
		return nil, 0, storeError("user", "list users failed", err)
	}

	total, err := s.userRepository.Count(ctx, filters)
	if err != nil {
		return nil, 0, storeError("user", "count users failed", err)
	}

	return users, total, nil
}

// UpdateDetails lets an admin change names, role and the active flag.
// Deactivation also ends every session of the account.
func (s *userService) UpdateDetails(ctx context.Context, session domain.Session, id uuid.UUID, update domain.AdminUserUpdate) (*domain.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	if err := domain.Validate(update); err != nil {
		return nil, err
	}

	if id == session.UserID && update.IsActive != nil && !*update.IsActive {
		return nil, domain.NewValidationError("you cannot deactivate your own account")
	}

	storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	user, err := s.userRepository.GetByID(storeCtx, id)
	cancel()
	if err != nil {
		return nil, storeError("user", "load user failed", err)
	}

	applyName(user, update.FirstName, update.LastName)
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	if !user.IsActive {
		storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
		defer cancel()
		if _, err := s.refreshSessionRepository.DeleteByUserID(storeCtx, user.ID); err != nil {
			logger.Error("delete refresh sessions of deactivated user failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	logger.Info("user updated by admin", zap.String("user_id", id.String()), zap.String("admin_id", session.UserID.String()))

	return user, nil
}

func (s *userService) Stats(ctx context.Context, session domain.Session) (*domain.UserStats, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	byRole, err := s.userRepository.CountByRole(ctx)
	if err != nil {
		return nil, storeError("user", "count users by role failed", err)
	}

	stats := &domain.UserStats{ByRole: byRole}
	for _, n := range byRole {
		stats.Total += n
	}

	return stats, nil
}

// Promote makes an existing account an admin. It is the operator path used
// by the CLI and has no session.
func (s *userService) Promote(ctx context.Context, rawEmail string) (*domain.User, error) {
	addr, err := validEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	user, err := s.userRepository.GetByEmail(storeCtx, addr)
	cancel()
	if err != nil {
		return nil, storeError("user", "load user failed", err)
	}

	if user.Role == domain.RoleAdmin {
		return user, nil
	}

	user.Role = domain.RoleAdmin
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("user promoted to admin", zap.String("user_id", user.ID.String()))

	return user, nil
}

// deletionStep is one step of an account deletion. Steps run in order and
// are never rolled back. A failing fatal step stops the steps after it.
type deletionStep struct {
	name  string
	fatal bool
	run   func(ctx context.Context, user *domain.User) []string
	done  func(report *domain.UserDeletionReport)
}

func (s *userService) deletionSteps() []deletionStep {
	return []deletionStep{
		{
			name: "profileImages",
			run: func(ctx context.Context, user *domain.User) []string {
				var known []string
				if user.ProfileImage != nil {
					known = append(known, *user.ProfileImage)
				}
				return s.deleteFolder(ctx, storage.ProfileFolder(user.ID), known)
			},
			done: func(r *domain.UserDeletionReport) { r.ProfileImages = true },
		},
		{
			name: "idDocuments",
			run: func(ctx context.Context, user *domain.User) []string {
				return s.deleteFolder(ctx, storage.IDDocumentsFolder(user.ID), user.IDDocuments)
			},
			done: func(r *domain.UserDeletionReport) { r.IDDocuments = true },
		},
		{
			name: "userPosts",
			run: func(ctx context.Context, user *domain.User) []string {
				return s.posts.deleteOwnedBy(ctx, user.ID)
			},
			done: func(r *domain.UserDeletionReport) { r.UserPosts = true },
		},
		{
			name:  "userDocument",
			fatal: true,
			run: func(ctx context.Context, user *domain.User) []string {
				storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
				defer cancel()
				if err := s.userRepository.Delete(storeCtx, user.ID); err != nil {
					return []string{err.Error()}
				}
				s.forget(ctx, user.ID)
				return nil
			},
			done: func(r *domain.UserDeletionReport) { r.UserDocument = true },
		},
		{
			name: "authAccount",
			run: func(ctx context.Context, user *domain.User) []string {
				storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
				defer cancel()

				var failures []string
				if _, err := s.refreshSessionRepository.DeleteByUserID(storeCtx, user.ID); err != nil {
					failures = append(failures, err.Error())
				}
				if err := s.authIdentityRepository.Delete(storeCtx, user.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
					failures = append(failures, err.Error())
				}
				return failures
			},
			done: func(r *domain.UserDeletionReport) { r.AuthAccount = true },
		},
	}
}

func (s *userService) deleteFolder(ctx context.Context, folder string, known []string) []string {
	ctx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	defer cancel()

	var failures []string

	urls, err := folderURLs(ctx, s.storage, folder, known)
	if err != nil {
		failures = append(failures, fmt.Sprintf("list %s: %v", folder, err))
	}

	for _, err := range removeObjects(ctx, s.storage, urls) {
		failures = append(failures, err.Error())
	}

	return failures
}

// Delete removes an account with everything it owns. Only the user record
// step is fatal; other failures are collected in the report.
func (s *userService) Delete(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.UserDeletionReport, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	if id == session.UserID {
		return nil, domain.NewValidationError("you cannot delete your own account")
	}

	storeCtx, cancel := withTimeout(ctx, s.config.Timeouts.Store)
	user, err := s.userRepository.GetByID(storeCtx, id)
	cancel()
	if err != nil {
		return nil, storeError("user", "load user failed", err)
	}

	report := &domain.UserDeletionReport{Errors: []string{}}

	for _, step := range s.deletionSteps() {
		failures := step.run(ctx, user)
		if len(failures) == 0 {
			step.done(report)
			continue
		}

		for _, f := range failures {
			report.Errors = append(report.Errors, step.name+": "+f)
		}

		if step.fatal {
			logger.Error("user deletion aborted",
				zap.String("user_id", id.String()),
				zap.String("step", step.name),
				zap.Strings("errors", report.Errors),
			)
			return report, &domain.Error{
				Kind:    domain.KindDependencyFailure,
				Message: "delete user failed",
				Details: report,
			}
		}
	}

	logger.Info("user deleted",
		zap.String("user_id", id.String()),
		zap.String("admin_id", session.UserID.String()),
		zap.Int("errors", len(report.Errors)),
	)

	if len(report.Errors) > 0 {
		return report, domain.NewPartialFailureError("user deleted, some related data could not be removed", report)
	}

	return report, nil
}
