package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"NeighborWatch/pkg/logger"
	stores "NeighborWatch/pkg/storage"
	"NeighborWatch/pkg/util"
)

const DefaultPort = 5173

var DefaultOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Addr           string `env:"ADDR"`
	Port           int    `env:"PORT"`
	Mode           string `env:"MODE"`
	DB             util.DBOptions
	AutoMigrate    bool `env:"DB_AUTO_MIGRATE"`
	Storage        stores.Config
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL"`
	MaxUploadSize  int64         `env:"MAX_UPLOAD_SIZE"`
	AllowedOrigins []string      `env:"CORS_ORIGINS"`
	RateLimit      string        `env:"RATE_LIMIT"`
	RateLimitRedis string        `env:"RATE_LIMIT_REDIS_ADDR"`
	MetricsPath    string        `env:"METRICS_PATH"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE"`
	Log            logger.LogConfig
}

// Load reads the environment, after merging .env files for APP_ENV.
func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	driver := util.GetEnvDefault("DB_DRIVER", util.DriverMySQL)
	cfg := &Config{
		Addr: util.GetEnv("ADDR"),
		Port: int(util.GetIntEnvDefault("PORT", DefaultPort)),
		Mode: util.GetEnvDefault("MODE", "release"),
		DB: util.DBOptions{
			Driver:       driver,
			DSN:          util.GetEnv("DSN"),
			Host:         util.GetEnvDefault("DB_HOST", "127.0.0.1"),
			Port:         int(util.GetIntEnv("DB_PORT")),
			User:         util.GetEnv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         util.GetEnvDefault("DB_DATABASE", util.GetEnv("DB_NAME")),
			SSLMode:      util.GetEnv("DB_SSLMODE"),
			Timeout:      util.GetDurationEnv("DB_TIMEOUT", 5*time.Second),
			QueryTimeout: util.GetDurationEnv("DB_QUERY_TIMEOUT", 10*time.Second),
			MaxOpenConns: int(util.GetIntEnvDefault("DB_MAX_OPEN_CONNS", 10)),
		},
		AutoMigrate: util.GetBoolEnv("DB_AUTO_MIGRATE"),
		Storage: stores.Config{
			Driver: util.GetEnvDefault("STORAGE_DRIVER", stores.DriverLocal),
			Dir:    util.GetEnvDefault("UPLOAD_DIR", "uploads"),
			Minio: stores.MinioConfig{
				Endpoint:  util.GetEnv("MINIO_ENDPOINT"),
				AccessKey: util.GetEnv("MINIO_ACCESS_KEY"),
				SecretKey: util.GetEnv("MINIO_SECRET_KEY"),
				Bucket:    util.GetEnv("MINIO_BUCKET"),
				UseSSL:    util.GetBoolEnv("MINIO_USE_SSL"),
			},
		},
		PublicBaseURL:  util.GetEnv("PUBLIC_BASE_URL"),
		MaxUploadSize:  util.GetIntEnvDefault("MAX_UPLOAD_SIZE", 10<<20),
		AllowedOrigins: util.GetListEnv("CORS_ORIGINS", DefaultOrigins),
		RateLimit:      util.GetEnv("RATE_LIMIT"),
		RateLimitRedis: util.GetEnv("RATE_LIMIT_REDIS_ADDR"),
		MetricsPath:    util.GetEnvDefault("METRICS_PATH", "/metrics"),
		ShutdownGrace:  util.GetDurationEnv("SHUTDOWN_GRACE", 10*time.Second),
		Log: logger.LogConfig{
			Level:      util.GetEnvDefault("LOG_LEVEL", "info"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnvDefault("LOG_MAX_SIZE", 100)),
			MaxAge:     int(util.GetIntEnvDefault("LOG_MAX_AGE", 30)),
			MaxBackups: int(util.GetIntEnvDefault("LOG_MAX_BACKUPS", 5)),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case util.DriverMySQL, util.DriverPostgres, util.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DB.Driver)
	}
	if c.Storage.Driver == stores.DriverLocal && c.Storage.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	return nil
}

// ListenAddr is ADDR when set, otherwise 0.0.0.0:PORT.
func (c *Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return "0.0.0.0:" + strconv.Itoa(c.Port)
}
