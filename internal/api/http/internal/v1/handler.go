package v1

import (
	"context"
	"strconv"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/service"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/pkg/auth"

	"github.com/gin-gonic/gin"
)

// @title Blue Haven Rentals API
// @version 1.0
// @description Listings, moderation and account API of Blue Haven Rentals

// @BasePath /api/v1

// @securityDefinitions.apikey AdminAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

// CleanupEnqueuer schedules an out of band verification code cleanup.
type CleanupEnqueuer interface {
	EnqueueCleanupVerifications(ctx context.Context) error
}

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	storage      storage.ObjectStorage
	cleanups     CleanupEnqueuer
	config       *config.Config
}

func NewHandler(
	services *service.Services,
	tokenManager auth.TokenManager,
	objects storage.ObjectStorage,
	cleanups CleanupEnqueuer,
	config *config.Config,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		storage:      objects,
		cleanups:     cleanups,
		config:       config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initAuthRoutes(v1)
	h.initVerificationRoutes(v1)
	h.initPostsRoutes(v1)
	h.initImagesRoutes(v1)
	h.initUsersRoutes(v1)
	h.initAdminRoutes(v1)
}

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
)

func pageParams(c *gin.Context) (int, int) {
	page := 1
	limit := defaultPageLimit

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, maxPageLimit)
		}
	}

	return page, limit
}
