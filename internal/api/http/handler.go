package apiHttp

import (
	"net/http"
	"time"

	_ "github.com/bluehaven/rentals/docs"
	internalV1 "github.com/bluehaven/rentals/internal/api/http/internal/v1"
	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/service"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/pkg/auth"
	"github.com/bluehaven/rentals/pkg/limiter"
	"github.com/bluehaven/rentals/pkg/logger"
	"github.com/bluehaven/rentals/pkg/validator"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// multipart bodies above this are spooled to disk
const maxMultipartMemory = 16 << 20

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	storage      storage.ObjectStorage
	cleanups     internalV1.CleanupEnqueuer
	config       *config.Config
}

func NewHandlers(
	services *service.Services,
	tokenManager auth.TokenManager,
	objects storage.ObjectStorage,
	cleanups internalV1.CleanupEnqueuer,
	cfg *config.Config,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		storage:      objects,
		cleanups:     cleanups,
		config:       cfg,
	}
}

func (h *Handler) Init(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	validator.RegisterGinValidator(domain.RegisterValidations)

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.Limit(cfg.Limiter.RPS, cfg.Limiter.Burst, cfg.Limiter.TTL),
		corsMiddleware(cfg.HttpServer.AllowedOrigins),
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	if cfg.HttpServer.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.NewHandler(), ginSwagger.InstanceName("internal")))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	h.initAPI(router)

	return router
}

func (h *Handler) initAPI(router *gin.Engine) {
	internalHandlersV1 := internalV1.NewHandler(h.services, h.tokenManager, h.storage, h.cleanups, h.config)
	api := router.Group("/api")
	internalHandlersV1.Init(api)
}
