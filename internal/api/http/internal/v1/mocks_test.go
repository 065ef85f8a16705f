package v1

import (
	"context"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type postsMock struct {
	mock.Mock
}

func (m *postsMock) Create(ctx context.Context, session domain.Session, content domain.PostContent) (*domain.Post, error) {
	args := m.Called(ctx, session, content)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *postsMock) GetByID(ctx context.Context, viewer domain.Session, id uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, viewer, id)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *postsMock) Browse(ctx context.Context, page, limit int, filters *repository.PostFilters) ([]domain.Post, int64, error) {
	args := m.Called(ctx, page, limit, filters)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *postsMock) ListMine(ctx context.Context, session domain.Session) ([]domain.Post, error) {
	args := m.Called(ctx, session)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *postsMock) Edit(ctx context.Context, session domain.Session, id uuid.UUID, update domain.PostUpdate) (*domain.Post, error) {
	args := m.Called(ctx, session, id, update)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *postsMock) Approve(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, session, id)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *postsMock) Decline(ctx context.Context, session domain.Session, id uuid.UUID, reason string) (*domain.Post, error) {
	args := m.Called(ctx, session, id, reason)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *postsMock) ReviewQueue(ctx context.Context, session domain.Session) ([]domain.Post, error) {
	args := m.Called(ctx, session)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *postsMock) ListByStatus(ctx context.Context, session domain.Session, status domain.PostStatus) ([]domain.Post, error) {
	args := m.Called(ctx, session, status)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *postsMock) Delete(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.PostDeletionReport, error) {
	args := m.Called(ctx, session, id)
	report, _ := args.Get(0).(*domain.PostDeletionReport)
	return report, args.Error(1)
}

func (m *postsMock) AttachImages(ctx context.Context, session domain.Session, id uuid.UUID, images []service.ImageUpload) (*domain.Post, error) {
	args := m.Called(ctx, session, id, images)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *postsMock) Stats(ctx context.Context, session domain.Session) (*domain.PostStats, error) {
	args := m.Called(ctx, session)
	stats, _ := args.Get(0).(*domain.PostStats)
	return stats, args.Error(1)
}

type verificationsMock struct {
	mock.Mock
}

func (m *verificationsMock) Issue(ctx context.Context, email string, userName string) (uuid.UUID, error) {
	args := m.Called(ctx, email, userName)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *verificationsMock) Verify(ctx context.Context, email string, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *verificationsMock) Resend(ctx context.Context, email string, userName string) (uuid.UUID, error) {
	args := m.Called(ctx, email, userName)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *verificationsMock) IsVerified(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *verificationsMock) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type usersMock struct {
	mock.Mock
}

func (m *usersMock) userResult(args mock.Arguments) (*domain.User, error) {
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *usersMock) SignUp(ctx context.Context, input service.SignUpInput) (*domain.User, error) {
	return m.userResult(m.Called(ctx, input))
}

func (m *usersMock) SignUpWithoutVerification(ctx context.Context, input service.SignUpInput) (*domain.User, error) {
	return m.userResult(m.Called(ctx, input))
}

func (m *usersMock) SignIn(ctx context.Context, input service.SignInInput) (*service.Tokens, *domain.User, error) {
	args := m.Called(ctx, input)
	tokens, _ := args.Get(0).(*service.Tokens)
	user, _ := args.Get(1).(*domain.User)
	return tokens, user, args.Error(2)
}

func (m *usersMock) RefreshTokens(ctx context.Context, refreshToken string, userAgent string, userIP string) (*service.Tokens, error) {
	args := m.Called(ctx, refreshToken, userAgent, userIP)
	tokens, _ := args.Get(0).(*service.Tokens)
	return tokens, args.Error(1)
}

func (m *usersMock) SignOut(ctx context.Context, session domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *usersMock) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *usersMock) ConfirmPasswordReset(ctx context.Context, token string, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *usersMock) Authenticate(ctx context.Context, subject string) (domain.Session, error) {
	args := m.Called(ctx, subject)
	session, _ := args.Get(0).(domain.Session)
	return session, args.Error(1)
}

func (m *usersMock) GetProfile(ctx context.Context, session domain.Session) (*domain.User, error) {
	return m.userResult(m.Called(ctx, session))
}

func (m *usersMock) UpdateProfile(ctx context.Context, session domain.Session, update domain.ProfileUpdate) (*domain.User, error) {
	return m.userResult(m.Called(ctx, session, update))
}

func (m *usersMock) UploadProfileImage(ctx context.Context, session domain.Session, image service.ImageUpload) (*domain.User, error) {
	return m.userResult(m.Called(ctx, session, image))
}

func (m *usersMock) UploadIDDocument(ctx context.Context, session domain.Session, image service.ImageUpload) (*domain.User, error) {
	return m.userResult(m.Called(ctx, session, image))
}

func (m *usersMock) List(ctx context.Context, session domain.Session, page, limit int, filters *repository.UserFilters) ([]domain.User, int64, error) {
	args := m.Called(ctx, session, page, limit, filters)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *usersMock) UpdateDetails(ctx context.Context, session domain.Session, id uuid.UUID, update domain.AdminUserUpdate) (*domain.User, error) {
	return m.userResult(m.Called(ctx, session, id, update))
}

func (m *usersMock) Stats(ctx context.Context, session domain.Session) (*domain.UserStats, error) {
	args := m.Called(ctx, session)
	stats, _ := args.Get(0).(*domain.UserStats)
	return stats, args.Error(1)
}

func (m *usersMock) Delete(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.UserDeletionReport, error) {
	args := m.Called(ctx, session, id)
	report, _ := args.Get(0).(*domain.UserDeletionReport)
	return report, args.Error(1)
}

func (m *usersMock) Promote(ctx context.Context, email string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, email))
}

type cleanupsMock struct {
	mock.Mock
}

func (m *cleanupsMock) EnqueueCleanupVerifications(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
