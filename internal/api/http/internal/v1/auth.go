package v1

import (
	"net/http"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const refreshTokenCookie = "refresh_token"

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.signUp)
		if h.config.Auth.AllowUnverifiedSignup {
			auth.POST("/signup/unverified", h.signUpUnverified)
		}
		auth.POST("/signin", h.signIn)
		auth.POST("/refresh", h.refreshTokens)
		auth.POST("/signout", h.userIdentityMiddleware, h.signOut)
		auth.POST("/password-reset", h.requestPasswordReset)
		auth.POST("/password-reset/confirm", h.confirmPasswordReset)
	}
}

type signUpRequest struct {
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	FullName string      `json:"full_name" binding:"required"`
	Role     domain.Role `json:"role" binding:"required"`
}

func (r signUpRequest) input() service.SignUpInput {
	return service.SignUpInput{
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
		Role:     r.Role,
	}
}

// @Summary Sign Up
// @Tags Auth
// @Description Creates an account for an email that already redeemed a verification code
// @ModuleID signUp
// @Accept  json
// @Produce  json
// @Param input body signUpRequest true "account"
// @Success 201 {object} domain.User
// @Failure 400 {object} ValidationErrorStruct
// @Failure 403 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Router /auth/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.SignUp(c.Request.Context(), req.input())
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// @Summary Sign Up Without Verification
// @Tags Auth
// @Description Only registered when AUTH_ALLOW_UNVERIFIED_SIGNUP is enabled
// @ModuleID signUpUnverified
// @Accept  json
// @Produce  json
// @Param input body signUpRequest true "account"
// @Success 201 {object} domain.User
// @Failure 400 {object} ValidationErrorStruct
// @Failure 409 {object} ErrorStruct
// @Router /auth/signup/unverified [post]
func (h *Handler) signUpUnverified(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.SignUpWithoutVerification(c.Request.Context(), req.input())
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userAuthResponse struct {
	AccessToken  string       `json:"access_token"`
	ExpiresIn    int64        `json:"expires_in"`
	RefreshToken uuid.UUID    `json:"refresh_token"`
	User         *domain.User `json:"user,omitempty"`
}

func (h *Handler) writeTokens(c *gin.Context, tokens *service.Tokens, user *domain.User) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshTokenCookie, tokens.RefreshToken.String(), int(tokens.RefreshTTL.Seconds()),
		"/api/v1/auth", "", h.config.Env != "local", true)

	c.JSON(http.StatusOK, userAuthResponse{
		AccessToken:  tokens.AccessToken,
		ExpiresIn:    int64(tokens.AccessTTL.Seconds()),
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

// @Summary Sign In
// @Tags Auth
// @ModuleID signIn
// @Accept  json
// @Produce  json
// @Param input body signInRequest true "credentials"
// @Success 200 {object} userAuthResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 403 {object} ErrorStruct
// @Router /auth/signin [post]
func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	tokens, user, err := h.services.Users.SignIn(c.Request.Context(), service.SignInInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		UserIP:    c.ClientIP(),
	})
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	h.writeTokens(c, tokens, user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// @Summary Refresh Tokens
// @Tags Auth
// @Description Rotates the refresh token. The token is read from the body or the refresh_token cookie.
// @ModuleID refreshTokens
// @Accept  json
// @Produce  json
// @Param input body refreshRequest false "refresh token"
// @Success 200 {object} userAuthResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401 {object} ErrorStruct
// @Router /auth/refresh [post]
func (h *Handler) refreshTokens(c *gin.Context) {
	var req refreshRequest
	// an empty body is fine when the cookie is present
	_ = c.ShouldBindJSON(&req)

	token := req.RefreshToken
	if token == "" {
		cookie, err := c.Cookie(refreshTokenCookie)
		if err != nil || cookie == "" {
			errorResponse(c, http.StatusBadRequest, UserRefreshTokenCookieNotFoundCode)
			return
		}
		token = cookie
	}

	tokens, err := h.services.Users.RefreshTokens(c.Request.Context(), token, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if domain.IsKind(err, domain.KindUnauthorized) {
			errorResponse(c, http.StatusUnauthorized, UserRefreshTokenExpiredCode)
			return
		}
		serviceErrorResponse(c, err)
		return
	}

	h.writeTokens(c, tokens, nil)
}

// @Summary Sign Out
// @Tags Auth
// @ModuleID signOut
// @Produce  json
// @Success 204
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /auth/signout [post]
func (h *Handler) signOut(c *gin.Context) {
	if err := h.services.Users.SignOut(c.Request.Context(), mustSession(c)); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.SetCookie(refreshTokenCookie, "", -1, "/api/v1/auth", "", h.config.Env != "local", true)
	c.Status(http.StatusNoContent)
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// @Summary Request Password Reset
// @Tags Auth
// @Description Always answers 202 so the endpoint cannot be used to probe for accounts
// @ModuleID requestPasswordReset
// @Accept  json
// @Produce  json
// @Param input body passwordResetRequest true "email"
// @Success 202 {object} messageResponse
// @Failure 400 {object} ValidationErrorStruct
// @Router /auth/password-reset [post]
func (h *Handler) requestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	if err := h.services.Users.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusAccepted, messageResponse{Message: "if the account exists a reset link was sent"})
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary Confirm Password Reset
// @Tags Auth
// @ModuleID confirmPasswordReset
// @Accept  json
// @Produce  json
// @Param input body passwordResetConfirmRequest true "token and new password"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Router /auth/password-reset/confirm [post]
func (h *Handler) confirmPasswordReset(c *gin.Context) {
	var req passwordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	if err := h.services.Users.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
