package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/service"
	"github.com/bluehaven/rentals/internal/storage"
	mock_storage "github.com/bluehaven/rentals/internal/storage/mock"
	"github.com/bluehaven/rentals/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fixture struct {
	posts         *postsMock
	verifications *verificationsMock
	users         *usersMock
	storage       *mock_storage.ObjectStorage
	cleanups      *cleanupsMock
	tokens        *auth.Manager
	router        *gin.Engine
}

func newFixture(t *testing.T, configure ...func(cfg *config.Config)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env: "local",
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				SigningKey:      "test-signing-key",
				AccessTokenTTL:  time.Minute,
				RefreshTokenTTL: time.Hour,
			},
		},
	}
	for _, fn := range configure {
		fn(cfg)
	}

	tokens, err := auth.NewManager(cfg.Auth.JWT)
	require.NoError(t, err)

	f := &fixture{
		posts:         &postsMock{},
		verifications: &verificationsMock{},
		users:         &usersMock{},
		storage:       &mock_storage.ObjectStorage{},
		cleanups:      &cleanupsMock{},
		tokens:        tokens,
		router:        gin.New(),
	}

	services := &service.Services{Posts: f.posts, Verifications: f.verifications, Users: f.users}
	NewHandler(services, tokens, f.storage, f.cleanups, cfg).Init(f.router.Group("/api"))

	return f
}

// login returns an Authorization header value resolving to session.
func (f *fixture) login(t *testing.T, session domain.Session) string {
	t.Helper()

	token, _, err := f.tokens.NewJWT(session.UserID.String())
	require.NoError(t, err)
	f.users.On("Authenticate", mock.Anything, session.UserID.String()).Return(session, nil)

	return "Bearer " + token
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        string
	cookie      *http.Cookie
}

func (f *fixture) do(r request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var (
	ownerSession = domain.Session{UserID: uuid.New(), Role: domain.RoleBoardingOwner, Name: "Nimal Perera", Email: "nimal@example.com"}
	adminSession = domain.Session{UserID: uuid.New(), Role: domain.RoleAdmin, Name: "Admin", Email: "admin@example.com"}
)

func TestVerificationRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("send", func(t *testing.T) {
		id := uuid.New()
		f.verifications.On("Issue", mock.Anything, "amal@example.com", "Amal").Return(id, nil).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/verifications/send",
			body:        jsonBody(t, map[string]string{"email": "amal@example.com", "name": "Amal"}),
			contentType: "application/json",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, id.String(), decode(t, w)["verification_id"])
	})

	t.Run("wrong code", func(t *testing.T) {
		f.verifications.On("Verify", mock.Anything, "amal@example.com", "000000").
			Return(domain.NewInvalidOrExpiredError("invalid or expired verification code")).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/verifications/verify",
			body:        jsonBody(t, map[string]string{"email": "amal@example.com", "code": "000000"}),
			contentType: "application/json",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(InvalidOrExpiredCode), body["error_code"])
		assert.Equal(t, "invalid or expired verification code", body["error_message"])
	})

	t.Run("missing code never reaches the service", func(t *testing.T) {
		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/verifications/verify",
			body:        jsonBody(t, map[string]string{"email": "amal@example.com"}),
			contentType: "application/json",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, float64(ValidationErrorCode), decode(t, w)["error_code"])
		f.verifications.AssertNotCalled(t, "Verify", mock.Anything, "amal@example.com", "")
	})

	t.Run("status", func(t *testing.T) {
		f.verifications.On("IsVerified", mock.Anything, "amal@example.com").Return(true, nil).Once()

		w := f.do(request{method: http.MethodGet, path: "/api/v1/verifications/status?email=amal@example.com"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["verified"])
	})
}

func TestUserIdentityMiddleware(t *testing.T) {
	f := newFixture(t)

	t.Run("missing header", func(t *testing.T) {
		w := f.do(request{method: http.MethodGet, path: "/api/v1/users/me"})

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, float64(UnauthorizedCode), decode(t, w)["error_code"])
	})

	t.Run("garbage token", func(t *testing.T) {
		w := f.do(request{method: http.MethodGet, path: "/api/v1/users/me", auth: "Bearer not-a-jwt"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		id := uuid.New()
		token, _, err := f.tokens.NewJWT(id.String())
		require.NoError(t, err)
		f.users.On("Authenticate", mock.Anything, id.String()).
			Return(domain.Session{}, domain.NewForbiddenError("account is deactivated")).Once()

		w := f.do(request{method: http.MethodGet, path: "/api/v1/users/me", auth: "Bearer " + token})

		require.Equal(t, http.StatusForbidden, w.Code)
		f.users.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("session reaches the service", func(t *testing.T) {
		user := &domain.User{ID: ownerSession.UserID, Email: ownerSession.Email, Role: domain.RoleBoardingOwner}
		f.users.On("GetProfile", mock.Anything, ownerSession).Return(user, nil).Once()

		w := f.do(request{method: http.MethodGet, path: "/api/v1/users/me", auth: f.login(t, ownerSession)})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "boarding_owner", decode(t, w)["role"])
	})
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("owner is rejected before the service", func(t *testing.T) {
		w := f.do(request{method: http.MethodGet, path: "/api/v1/admin/posts/review-queue", auth: f.login(t, ownerSession)})

		require.Equal(t, http.StatusForbidden, w.Code)
		f.posts.AssertNotCalled(t, "ReviewQueue", mock.Anything, mock.Anything)
	})

	adminAuth := f.login(t, adminSession)

	t.Run("review queue", func(t *testing.T) {
		queue := []domain.Post{{ID: uuid.New(), Status: domain.PostStatusPending}, {ID: uuid.New(), Status: domain.PostStatusPending, IsEdited: true}}
		f.posts.On("ReviewQueue", mock.Anything, adminSession).Return(queue, nil).Once()

		w := f.do(request{method: http.MethodGet, path: "/api/v1/admin/posts/review-queue", auth: adminAuth})

		require.Equal(t, http.StatusOK, w.Code)
		var got []domain.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("decline", func(t *testing.T) {
		id := uuid.New()
		reason := "Photos unclear"
		declined := &domain.Post{ID: id, Status: domain.PostStatusDeclined, DeclineReason: &reason}
		f.posts.On("Decline", mock.Anything, adminSession, id, "Photos unclear").Return(declined, nil).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/admin/posts/" + id.String() + "/decline",
			body:        jsonBody(t, map[string]string{"reason": "Photos unclear"}),
			contentType: "application/json",
			auth:        adminAuth,
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "declined", body["status"])
		assert.Equal(t, "Photos unclear", body["decline_reason"])
	})

	t.Run("approve with a malformed id", func(t *testing.T) {
		w := f.do(request{method: http.MethodPost, path: "/api/v1/admin/posts/nope/approve", auth: adminAuth})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, float64(InvalidRequestCode), decode(t, w)["error_code"])
	})

	t.Run("invalid transition", func(t *testing.T) {
		id := uuid.New()
		f.posts.On("Approve", mock.Anything, adminSession, id).
			Return(nil, domain.NewValidationError(`cannot approve a post in status "approved"`)).Once()

		w := f.do(request{method: http.MethodPost, path: "/api/v1/admin/posts/" + id.String() + "/approve", auth: adminAuth})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["error_message"], "cannot approve")
	})

	t.Run("delete user that could not be removed", func(t *testing.T) {
		id := uuid.New()
		report := &domain.UserDeletionReport{ProfileImages: true, IDDocuments: true, UserPosts: true, Errors: []string{"userDocument: deadlock"}}
		f.users.On("Delete", mock.Anything, adminSession, id).Return(report, &domain.Error{
			Kind:    domain.KindDependencyFailure,
			Message: "delete user failed",
			Details: report,
		}).Once()

		w := f.do(request{method: http.MethodDelete, path: "/api/v1/admin/users/" + id.String(), auth: adminAuth})

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		details, ok := decode(t, w)["details"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, details["userDocument"])
		assert.Equal(t, true, details["userPosts"])
	})

	t.Run("cleanup now", func(t *testing.T) {
		f.verifications.On("CleanupExpired", mock.Anything).Return(int64(3), nil).Once()

		w := f.do(request{method: http.MethodPost, path: "/api/v1/admin/verifications/cleanup", auth: adminAuth})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(3), decode(t, w)["deleted"])
	})

	t.Run("cleanup queued", func(t *testing.T) {
		f.cleanups.On("EnqueueCleanupVerifications", mock.Anything).Return(nil).Once()

		w := f.do(request{method: http.MethodPost, path: "/api/v1/admin/verifications/cleanup?async=true", auth: adminAuth})

		require.Equal(t, http.StatusAccepted, w.Code)
		f.cleanups.AssertExpectations(t)
	})
}

func TestPostRoutes(t *testing.T) {
	f := newFixture(t)
	ownerAuth := f.login(t, ownerSession)

	t.Run("browse passes filters and clamps the page size", func(t *testing.T) {
		posts := []domain.Post{{ID: uuid.New(), Status: domain.PostStatusApproved, Images: domain.StringList{}}}
		f.posts.On("Browse", mock.Anything, 2, 100, mock.MatchedBy(func(filters *repository.PostFilters) bool {
			return assert.ObjectsAreEqual([]string{"Apartment", "House"}, filters.Categories) &&
				filters.MinRent != nil && *filters.MinRent == 1000 &&
				filters.Search != nil && *filters.Search == "kandy" &&
				filters.SortBy == "rent"
		})).Return(posts, int64(13), nil).Once()

		w := f.do(request{
			method: http.MethodGet,
			path:   "/api/v1/posts?categories=Apartment,%20House&min_rent=1000&search=kandy&sort_by=rent&page=2&limit=500",
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(13), body["total"])
		assert.Equal(t, float64(100), body["limit"])
		assert.Len(t, body["items"], 1)
	})

	t.Run("store failure does not leak the cause", func(t *testing.T) {
		f.posts.On("Browse", mock.Anything, 1, defaultPageLimit, mock.Anything).
			Return(nil, int64(0), domain.NewDependencyError("list posts failed", errors.New("dial tcp 10.0.0.7:3306: connection refused"))).Once()

		w := f.do(request{method: http.MethodGet, path: "/api/v1/posts"})

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.7")
		assert.Equal(t, DependencyFailureMessage, decode(t, w)["error_message"])
	})

	t.Run("get post resolves the optional viewer", func(t *testing.T) {
		id := uuid.New()
		declined := &domain.Post{ID: id, OwnerID: ownerSession.UserID, Status: domain.PostStatusDeclined, Images: domain.StringList{}}
		f.posts.On("GetByID", mock.Anything, domain.Session{}, id).
			Return(nil, domain.NewNotFoundError("post not found")).Twice()
		f.posts.On("GetByID", mock.Anything, ownerSession, id).Return(declined, nil).Once()

		w := f.do(request{method: http.MethodGet, path: "/api/v1/posts/" + id.String()})
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, float64(NotFoundCode), decode(t, w)["error_code"])

		w = f.do(request{method: http.MethodGet, path: "/api/v1/posts/" + id.String(), auth: "Bearer not-a-jwt"})
		require.Equal(t, http.StatusNotFound, w.Code, "a bad token reads as anonymous")

		w = f.do(request{method: http.MethodGet, path: "/api/v1/posts/" + id.String(), auth: ownerAuth})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(domain.PostStatusDeclined), decode(t, w)["status"])
	})

	t.Run("create reports field errors", func(t *testing.T) {
		content := domain.PostContent{Title: "short"}
		f.posts.On("Create", mock.Anything, ownerSession, content).Return(nil, domain.Validate(content)).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/posts",
			body:        jsonBody(t, content),
			contentType: "application/json",
			auth:        ownerAuth,
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(ValidationErrorCode), body["error_code"])
		assert.NotEmpty(t, body["validation_errors"])
	})

	t.Run("delete with image cleanup failures", func(t *testing.T) {
		id := uuid.New()
		report := &domain.PostDeletionReport{PostID: id, PostDeleted: true, ImagesDeleted: 1, Errors: []string{"delete image b.png: refused"}}
		f.posts.On("Delete", mock.Anything, ownerSession, id).
			Return(report, domain.NewPartialFailureError("post deleted, some images could not be removed", report)).Once()

		w := f.do(request{method: http.MethodDelete, path: "/api/v1/posts/" + id.String(), auth: ownerAuth})

		require.Equal(t, http.StatusMultiStatus, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(PartialFailureCode), body["error_code"])
		details := body["details"].(map[string]any)
		assert.Equal(t, true, details["post_deleted"])
		assert.Equal(t, []any{"delete image b.png: refused"}, details["errors"])
	})

	t.Run("attach images sniffs the content", func(t *testing.T) {
		id := uuid.New()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(postImagesField, "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 512)...))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		updated := &domain.Post{ID: id, Status: domain.PostStatusPending, Images: domain.StringList{"http://img.test/posts/x.png"}}
		f.posts.On("AttachImages", mock.Anything, ownerSession, id, mock.MatchedBy(func(images []service.ImageUpload) bool {
			return len(images) == 1 &&
				images[0].Name == "photo.jpg" &&
				images[0].ContentType == "image/png" &&
				images[0].Size == int64(len(pngHeader)+512)
		})).Return(updated, nil).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/posts/" + id.String() + "/images",
			body:        &buf,
			contentType: mw.FormDataContentType(),
			auth:        ownerAuth,
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		f.posts.AssertExpectations(t)
	})

	t.Run("attach without files", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("note", "nothing"))
		require.NoError(t, mw.Close())

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/posts/" + uuid.NewString() + "/images",
			body:        &buf,
			contentType: mw.FormDataContentType(),
			auth:        ownerAuth,
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "no images provided", decode(t, w)["error_message"])
	})
}

func TestAuthRoutes(t *testing.T) {
	t.Run("unverified signup is not routed by default", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/auth/signup/unverified",
			body:        jsonBody(t, map[string]string{"email": "a@b.com", "password": "longenough", "full_name": "A B", "role": "boarding_finder"}),
			contentType: "application/json",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unverified signup when enabled", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Config) { cfg.Auth.AllowUnverifiedSignup = true })
		input := service.SignUpInput{Email: "a@b.com", Password: "longenough", FullName: "A B", Role: domain.RoleBoardingFinder}
		f.users.On("SignUpWithoutVerification", mock.Anything, input).
			Return(&domain.User{ID: uuid.New(), Email: "a@b.com", Role: domain.RoleBoardingFinder}, nil).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/auth/signup/unverified",
			body:        jsonBody(t, map[string]string{"email": "a@b.com", "password": "longenough", "full_name": "A B", "role": "boarding_finder"}),
			contentType: "application/json",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("signup of an unverified email", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("SignUp", mock.Anything, mock.Anything).
			Return(nil, domain.NewForbiddenError("email address is not verified")).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/auth/signup",
			body:        jsonBody(t, map[string]string{"email": "a@b.com", "password": "longenough", "full_name": "A B", "role": "boarding_owner"}),
			contentType: "application/json",
		})

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "email address is not verified", decode(t, w)["error_message"])
	})

	t.Run("signin sets the refresh cookie", func(t *testing.T) {
		f := newFixture(t)
		refresh := uuid.New()
		tokens := &service.Tokens{AccessToken: "access", AccessTTL: time.Minute, RefreshToken: refresh, RefreshTTL: time.Hour}
		f.users.On("SignIn", mock.Anything, mock.MatchedBy(func(in service.SignInInput) bool {
			return in.Email == "a@b.com" && in.Password == "longenough"
		})).Return(tokens, &domain.User{ID: uuid.New(), Email: "a@b.com"}, nil).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/auth/signin",
			body:        jsonBody(t, map[string]string{"email": "a@b.com", "password": "longenough"}),
			contentType: "application/json",
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "access", body["access_token"])
		assert.Equal(t, float64(60), body["expires_in"])
		assert.Contains(t, w.Header().Get("Set-Cookie"), refreshTokenCookie+"="+refresh.String())
	})

	t.Run("signin with bad credentials", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("SignIn", mock.Anything, mock.Anything).
			Return(nil, nil, domain.NewUnauthorizedError("invalid email or password")).Once()

		w := f.do(request{
			method:      http.MethodPost,
			path:        "/api/v1/auth/signin",
			body:        jsonBody(t, map[string]string{"email": "a@b.com", "password": "wrong-pass"}),
			contentType: "application/json",
		})

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, UnauthorizedMessage, decode(t, w)["error_message"])
	})

	t.Run("refresh without a token", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(request{method: http.MethodPost, path: "/api/v1/auth/refresh"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, float64(UserRefreshTokenCookieNotFoundCode), decode(t, w)["error_code"])
	})

	t.Run("refresh with an expired cookie", func(t *testing.T) {
		f := newFixture(t)
		token := uuid.NewString()
		f.users.On("RefreshTokens", mock.Anything, token, mock.Anything, mock.Anything).
			Return(nil, domain.NewUnauthorizedError("refresh token expired")).Once()

		w := f.do(request{
			method: http.MethodPost,
			path:   "/api/v1/auth/refresh",
			cookie: &http.Cookie{Name: refreshTokenCookie, Value: token},
		})

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, float64(UserRefreshTokenExpiredCode), decode(t, w)["error_code"])
	})
}

func TestGetImage(t *testing.T) {
	f := newFixture(t)

	f.storage.On("Open", mock.Anything, "posts/abc/one.png").Return(
		&storage.Object{Path: "posts/abc/one.png", ContentType: "image/png", Size: 4},
		io.NopCloser(strings.NewReader("data")),
		nil,
	).Once()
	f.storage.On("Open", mock.Anything, "posts/abc/gone.png").
		Return(nil, nil, errors.Wrap(storage.ErrObjectNotFound, "posts/abc/gone.png")).Once()

	w := f.do(request{method: http.MethodGet, path: "/api/v1/images/posts/abc/one.png"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "data", w.Body.String())

	w = f.do(request{method: http.MethodGet, path: "/api/v1/images/posts/abc/gone.png"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetImage_IDDocuments(t *testing.T) {
	f := newFixture(t)
	ownerAuth := f.login(t, ownerSession)
	adminAuth := f.login(t, adminSession)
	strangerAuth := f.login(t, domain.Session{UserID: uuid.New(), Role: domain.RoleBoardingFinder})

	objectPath := storage.IDDocumentsFolder(ownerSession.UserID) + "/front.jpg"
	for i := 0; i < 2; i++ {
		f.storage.On("Open", mock.Anything, objectPath).Return(
			&storage.Object{Path: objectPath, ContentType: "image/jpeg", Size: 4},
			io.NopCloser(strings.NewReader("scan")),
			nil,
		).Once()
	}

	tests := []struct {
		name       string
		auth       string
		wantStatus int
	}{
		{"anonymous", "", http.StatusNotFound},
		{"another user", strangerAuth, http.StatusNotFound},
		{"owner", ownerAuth, http.StatusOK},
		{"admin", adminAuth, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(request{method: http.MethodGet, path: "/api/v1/images/" + objectPath, auth: tt.auth})
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "scan", w.Body.String())
				assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
			}
		})
	}

	f.storage.AssertExpectations(t)
}
