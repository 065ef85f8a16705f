package service

import (
	"context"
	"time"

	"github.com/bluehaven/rentals/internal/cache"
	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/queue/task"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/pkg/auth"
	"github.com/bluehaven/rentals/pkg/hash"
	"github.com/bluehaven/rentals/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Posts         Posts
	Verifications Verifications
	Users         Users
}

// Clock returns the current time. Tests replace it to move across expiry.
type Clock func() time.Time

// MailQueue hands emails to the background delivery workers.
type MailQueue interface {
	EnqueueVerificationEmail(ctx context.Context, payload task.SendVerificationEmail) error
	EnqueuePasswordResetEmail(ctx context.Context, payload task.SendPasswordResetEmail) error
}

type Deps struct {
	Config       *config.Config
	Repos        *repository.Repositories
	Storage      storage.ObjectStorage
	UserCache    cache.UserCache
	Hasher       hash.PasswordHasher
	TokenManager auth.TokenManager
	OtpGenerator otp.Generator
	MailQueue    MailQueue
	Clock        Clock
}

func NewServices(deps Deps) *Services {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	posts := newPostService(
		deps.Repos.Transactor,
		deps.Repos.Posts,
		deps.Storage,
		imageLimits(deps.Config.Storage),
		deps.Config.Timeouts,
		deps.Clock,
	)
	verifications := newVerificationService(
		deps.Repos.EmailVerifications,
		deps.OtpGenerator,
		deps.MailQueue,
		deps.Config.Auth,
		deps.Config.Timeouts,
		deps.Clock,
	)
	users := newUserService(
		deps.Repos,
		posts,
		verifications,
		deps.Storage,
		deps.UserCache,
		deps.Hasher,
		deps.TokenManager,
		deps.OtpGenerator,
		deps.MailQueue,
		deps.Config,
		deps.Clock,
	)

	return &Services{
		Posts:         posts,
		Verifications: verifications,
		Users:         users,
	}
}

func imageLimits(cfg config.StorageConfig) domain.ImageLimits {
	limits := domain.DefaultImageLimits()
	if cfg.MaxImageBytes > 0 {
		limits.MaxBytes = cfg.MaxImageBytes
	}
	if cfg.MaxPostImages > 0 {
		limits.MaxCount = cfg.MaxPostImages
	}
	return limits
}

type Posts interface {
	Create(ctx context.Context, session domain.Session, content domain.PostContent) (*domain.Post, error)
	GetByID(ctx context.Context, viewer domain.Session, id uuid.UUID) (*domain.Post, error)
	Browse(ctx context.Context, page, limit int, filters *repository.PostFilters) ([]domain.Post, int64, error)
	ListMine(ctx context.Context, session domain.Session) ([]domain.Post, error)
	Edit(ctx context.Context, session domain.Session, id uuid.UUID, update domain.PostUpdate) (*domain.Post, error)
	Approve(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.Post, error)
	Decline(ctx context.Context, session domain.Session, id uuid.UUID, reason string) (*domain.Post, error)
	ReviewQueue(ctx context.Context, session domain.Session) ([]domain.Post, error)
	ListByStatus(ctx context.Context, session domain.Session, status domain.PostStatus) ([]domain.Post, error)
	Delete(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.PostDeletionReport, error)
	AttachImages(ctx context.Context, session domain.Session, id uuid.UUID, images []ImageUpload) (*domain.Post, error)
	Stats(ctx context.Context, session domain.Session) (*domain.PostStats, error)
}

type Verifications interface {
	Issue(ctx context.Context, email string, userName string) (uuid.UUID, error)
	Verify(ctx context.Context, email string, code string) error
	Resend(ctx context.Context, email string, userName string) (uuid.UUID, error)
	IsVerified(ctx context.Context, email string) (bool, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type Users interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	SignUpWithoutVerification(ctx context.Context, input SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, input SignInInput) (*Tokens, *domain.User, error)
	RefreshTokens(ctx context.Context, refreshToken string, userAgent string, userIP string) (*Tokens, error)
	SignOut(ctx context.Context, session domain.Session) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token string, newPassword string) error
	Authenticate(ctx context.Context, subject string) (domain.Session, error)

	GetProfile(ctx context.Context, session domain.Session) (*domain.User, error)
	UpdateProfile(ctx context.Context, session domain.Session, update domain.ProfileUpdate) (*domain.User, error)
	UploadProfileImage(ctx context.Context, session domain.Session, image ImageUpload) (*domain.User, error)
	UploadIDDocument(ctx context.Context, session domain.Session, image ImageUpload) (*domain.User, error)

	List(ctx context.Context, session domain.Session, page, limit int, filters *repository.UserFilters) ([]domain.User, int64, error)
	UpdateDetails(ctx context.Context, session domain.Session, id uuid.UUID, update domain.AdminUserUpdate) (*domain.User, error)
	Stats(ctx context.Context, session domain.Session) (*domain.UserStats, error)
	Delete(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.UserDeletionReport, error)
	Promote(ctx context.Context, email string) (*domain.User, error)
}
