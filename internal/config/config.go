package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer HttpServer
	Database   Database
	Limiter    Limiter
	Auth       AuthConfig
	SMTP       SMTPConfig
	Email      EmailConfig
	Cache      Cache
	Storage    StorageConfig
	Queue      QueueConfig
	Timeouts   Timeouts
}

type HttpServer struct {
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout           time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	MaxHeaderBytes    int           `env:"HTTP_MAX_HEADER_BYTES" env-default:"1048576"`
	MaxBodyBytes      int64         `env:"HTTP_MAX_BODY_BYTES" env-default:"33554432" env-description:"request bodies above this are cut off, must fit a full image batch"`
	SwaggerEnabled    bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	AllowedOrigins    []string      `env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE" env-default:"UTC"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
	MigrationsDir      string        `env:"DB_MIGRATIONS_DIR" env-default:"migrations"`
	AutoMigrate        bool          `env:"DB_AUTO_MIGRATE" env-default:"false" env-description:"apply migrations on startup"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

type AuthConfig struct {
	JWT                   JWTConfig
	BcryptCost            int           `env:"AUTH_BCRYPT_COST" env-default:"12"`
	VerificationCodeTTL   time.Duration `env:"AUTH_VERIFICATION_CODE_TTL" env-default:"10m"`
	PasswordResetTTL      time.Duration `env:"AUTH_PASSWORD_RESET_TTL" env-default:"30m"`
	AllowUnverifiedSignup bool          `env:"AUTH_ALLOW_UNVERIFIED_SIGNUP" env-default:"false" env-description:"registers the signup route that skips email verification, never enable in production"`
}

type JWTConfig struct {
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"240h"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" env-default:"localhost"`
	Port int    `env:"SMTP_PORT" env-default:"587"`
	From string `env:"SMTP_FROM" env-default:"noreply@bluehavenrentals.com"`
	Pass string `env:"SMTP_PASS" env-default:""`
}

type EmailConfig struct {
	Enabled   bool `env:"EMAIL_ENABLED" env-default:"false" env-description:"when false emails are only logged"`
	Templates EmailTemplates
}

type EmailTemplates struct {
	Verification     string `env:"EMAIL_TEMPLATE_VERIFICATION" env-default:"verification.html"`
	VerificationText string `env:"EMAIL_TEMPLATE_VERIFICATION_TEXT" env-default:"verification.txt"`
	PasswordReset    string `env:"EMAIL_TEMPLATE_PASSWORD_RESET" env-default:"password_reset.html"`
	ResetURL         string `env:"EMAIL_PASSWORD_RESET_URL" env-default:"http://localhost:5173/reset-password"`
}

type Cache struct {
	Type  string        `env:"REDIS_TYPE" env-default:"redis" env-description:"specifies provider, one of redis/redisCluster"`
	TTL   time.Duration `env:"CACHE_USER_TTL" env-default:"5m"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"localhost:6379" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes: ['172.27.29.90:7000','172.27.29.91:7001']"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

type StorageConfig struct {
	MongoURI      string `env:"STORAGE_MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database      string `env:"STORAGE_MONGO_DB" env-default:"bluehaven"`
	Bucket        string `env:"STORAGE_BUCKET" env-default:"images"`
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" env-default:"http://localhost:8080/api/v1/images"`
	MaxImageBytes int64  `env:"STORAGE_MAX_IMAGE_BYTES" env-default:"3145728"`
	MaxPostImages int    `env:"STORAGE_MAX_POST_IMAGES" env-default:"5"`
}

type QueueConfig struct {
	Concurrency     int    `env:"QUEUE_CONCURRENCY" env-default:"10"`
	CleanupSchedule string `env:"QUEUE_CLEANUP_SCHEDULE" env-default:"@every 1h"`
}

type Timeouts struct {
	Store time.Duration `env:"TIMEOUT_STORE" env-default:"5s"`
	Mail  time.Duration `env:"TIMEOUT_MAIL" env-default:"10s"`
}

func MustLoad() *Config {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return &cfg
}
