package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/bluehaven/rentals/internal/api/http"
	"github.com/bluehaven/rentals/internal/cache"
	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/db"
	"github.com/bluehaven/rentals/internal/queue/asynqserver"
	queueClient "github.com/bluehaven/rentals/internal/queue/client"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/server"
	"github.com/bluehaven/rentals/internal/service"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/internal/worker"
	"github.com/bluehaven/rentals/pkg/auth"
	emailProvider "github.com/bluehaven/rentals/pkg/email"
	"github.com/bluehaven/rentals/pkg/email/smtp"
	"github.com/bluehaven/rentals/pkg/email/stub"
	"github.com/bluehaven/rentals/pkg/hash"
	"github.com/bluehaven/rentals/pkg/logger"
	"github.com/bluehaven/rentals/pkg/otp"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	// Dependencies
	logger.SetupLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting rentals api", zap.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	ctx := context.Background()

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Fatal("mysql connect problem", zap.Error(err))
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			logger.Error("error when closing mysql", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, dbMySQL, cfg.Database.MigrationsDir); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		logger.Info("migrations applied", zap.String("dir", cfg.Database.MigrationsDir))
	}

	// Init object storage
	mongoClient, err := storage.NewMongoClient(ctx, cfg.Storage.MongoURI)
	if err != nil {
		logger.Fatal("mongo connect problem", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("error when disconnecting mongo", zap.Error(err))
		}
	}()

	objects, err := storage.NewGridFS(mongoClient.Database(cfg.Storage.Database), cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
	if err != nil {
		logger.Fatal("gridfs bucket creation failed", zap.Error(err))
	}

	// Init cache
	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Fatal("redis connect problem", zap.Error(err))
	}
	defer redisClient.Close()
	userCache := cache.NewUserCache(redisClient, cfg.Cache.TTL)

	// Queue client
	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	restoreClient := queueClient.SetClient(asynqClient)
	defer func() {
		restoreClient()
		if err := asynqClient.Close(); err != nil {
			logger.Error("error when closing queue client", zap.Error(err))
		}
	}()
	enqueuer := queueClient.NewEnqueuer()

	var emailSender emailProvider.Sender
	if cfg.Email.Enabled {
		emailSender, err = smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
		if err != nil {
			logger.Fatal("smtp sender creation failed", zap.Error(err))
		}
	} else {
		emailSender = stub.NewLogSender()
		logger.Warn("email delivery disabled, messages are only logged")
	}

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		logger.Fatal("auth manager creation err", zap.Error(err))
	}

	hasher := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	otpGenerator := otp.NewGOTPGenerator()

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:       cfg,
		Repos:        repos,
		Storage:      objects,
		UserCache:    userCache,
		Hasher:       hasher,
		TokenManager: tokenManager,
		OtpGenerator: otpGenerator,
		MailQueue:    enqueuer,
	})
	handlers := apiHttp.NewHandlers(services, tokenManager, objects, enqueuer, cfg)

	// Background workers
	workers := worker.NewWorkers(worker.Deps{
		Services:      services,
		EmailProvider: emailSender,
		Config:        cfg,
	})

	queueServer, mux := asynqserver.New(cfg, workers)
	if err := queueServer.Start(mux); err != nil {
		logger.Fatal("queue server start failed", zap.Error(err))
	}

	scheduler, err := asynqserver.NewScheduler(cfg)
	if err != nil {
		logger.Fatal("scheduler creation failed", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}
	logger.Info("queue workers started", zap.String("cleanup_schedule", cfg.Queue.CleanupSchedule))

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	shutdownCtx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}

	scheduler.Shutdown()
	queueServer.Shutdown()

	logger.Info("app stopped")
}
