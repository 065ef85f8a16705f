package commands

import (
	"fmt"
	"os"

	"github.com/bluehaven/rentals/internal/cache"
	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/db"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/service"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "rentalsctl",
	Short: "Operator tooling for Blue Haven Rentals",
	Long: `rentalsctl runs maintenance tasks against the rentals database.

It reads the same environment as the API server (.env is loaded when present).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.MustLoad()
		logger.SetupLogger(cfg.Env, cfg.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

var cfg *config.Config

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(migrateCmd, usersCmd, verificationsCmd)
}

// runtime holds the connections a command opened.
type runtime struct {
	db       *sqlx.DB
	redis    redis.UniversalClient
	services *service.Services
}

func (r *runtime) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	_ = r.db.Close()
}

// openServices connects to MySQL and Redis and builds the services. Object
// storage and mail are left out, no command here touches them.
func openServices() (*runtime, error) {
	conn, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	client, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	services := service.NewServices(service.Deps{
		Config:    cfg,
		Repos:     repository.NewRepositories(conn),
		UserCache: cache.NewUserCache(client, cfg.Cache.TTL),
	})

	return &runtime{db: conn, redis: client, services: services}, nil
}
