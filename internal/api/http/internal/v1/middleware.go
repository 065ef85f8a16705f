package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/pkg/auth"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	sessionCtx          = "session"
)

// userIdentityMiddleware resolves the bearer token into a domain.Session
// and stores it on the gin context.
func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	subject, err := h.parseAuthHeader(c)
	if err != nil {
		if !errors.Is(err, auth.ErrAccessTokenExpired) {
			logger.Debug("parse auth header failed", zap.Error(err))
		}
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode)
		return
	}

	session, err := h.services.Users.Authenticate(c.Request.Context(), subject)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Set(sessionCtx, session)
	c.Next()
}

// optionalIdentityMiddleware sets the session when a valid bearer token is
// sent. Missing or bad tokens leave the request anonymous.
func (h *Handler) optionalIdentityMiddleware(c *gin.Context) {
	if c.GetHeader(authorizationHeader) == "" {
		c.Next()
		return
	}

	subject, err := h.parseAuthHeader(c)
	if err != nil {
		logger.Debug("optional auth header ignored", zap.Error(err))
		c.Next()
		return
	}

	session, err := h.services.Users.Authenticate(c.Request.Context(), subject)
	if err != nil {
		logger.Debug("optional identity ignored", zap.Error(err))
		c.Next()
		return
	}

	c.Set(sessionCtx, session)
	c.Next()
}

func (h *Handler) adminMiddleware(c *gin.Context) {
	session, ok := getSession(c)
	if !ok || !session.IsAdmin() {
		errorResponse(c, http.StatusForbidden, ForbiddenCode)
		return
	}

	c.Next()
}

func (h *Handler) parseAuthHeader(c *gin.Context) (string, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return "", errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return "", errors.New("token is empty")
	}

	return h.tokenManager.Parse(headerParts[1])
}

func getSession(c *gin.Context) (domain.Session, bool) {
	value, ok := c.Get(sessionCtx)
	if !ok {
		return domain.Session{}, false
	}

	session, ok := value.(domain.Session)
	return session, ok
}

// mustSession is for handlers mounted behind userIdentityMiddleware.
func mustSession(c *gin.Context) domain.Session {
	session, _ := getSession(c)
	return session
}
