package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverLocal = "local"
	DriverMinIO = "minio"
	DriverS3    = "s3"
	DriverGCS   = "gcs"
)

type (
	Config struct {
		AppEnv             string   `env:"APP_ENV" envDefault:"dev"`
		Port               string   `env:"PORT" envDefault:"5050"`
		PublicBaseURL      string   `env:"PUBLIC_BASE_URL"`
		LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
		PprofEnabled       bool     `env:"PPROF_ENABLED" envDefault:"false"`
		CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

		// peers allowed to set X-Forwarded-Proto/Host; unused when PUBLIC_BASE_URL is set
		TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," envDefault:"127.0.0.1,::1"`

		DatabaseURL string `env:"DATABASE_URL"`
		SQLitePath  string `env:"SQLITE_PATH" envDefault:"photoshare.db"`

		DB      DBConfig      `envPrefix:"DB_"`
		Upload  UploadConfig  `envPrefix:"UPLOAD_"`
		Storage StorageConfig `envPrefix:"STORAGE_"`
		MinIO   MinIOConfig   `envPrefix:"MINIO_"`
		S3      S3Config      `envPrefix:"S3_"`
		GCS     GCSConfig     `envPrefix:"GCS_"`
		Sweep   SweepConfig   `envPrefix:"SWEEP_"`
	}

	DBConfig struct {
		Host     string `env:"HOST"`
		Port     string `env:"PORT" envDefault:"5432"`
		Name     string `env:"NAME"`
		User     string `env:"USER"`
		Password string `env:"PASSWORD"`
		SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	}

	UploadConfig struct {
		MaxFileSize      int64 `env:"MAX_FILE_SIZE" envDefault:"52428800"` // 50 MiB
		MaxFiles         int   `env:"MAX_FILES" envDefault:"5"`
		MaxFields        int   `env:"MAX_FIELDS" envDefault:"10"`
		CleanupOnFailure bool  `env:"CLEANUP_ON_FAILURE" envDefault:"false"`
	}

	StorageConfig struct {
		Driver string `env:"DRIVER" envDefault:"local"`
		Dir    string `env:"DIR" envDefault:"uploads"`
	}

	MinIOConfig struct {
		Endpoint  string `env:"ENDPOINT"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"photos"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
	}

	S3Config struct {
		Bucket       string `env:"BUCKET"`
		Region       string `env:"REGION"`
		Endpoint     string `env:"ENDPOINT"`
		UsePathStyle bool   `env:"USE_PATH_STYLE" envDefault:"false"`
	}

	GCSConfig struct {
		Bucket string `env:"BUCKET"`
	}

	SweepConfig struct {
		GracePeriod time.Duration `env:"GRACE_PERIOD" envDefault:"1h"`
	}
)

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN resolves the database connection string: DATABASE_URL, then the
// discrete DB_* settings for postgres, then the sqlite file.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DB.Host != "" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
	}
	return c.SQLitePath
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be > 0")
	}
	if cfg.Upload.MaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be > 0")
	}
	if cfg.Upload.MaxFields <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FIELDS must be > 0")
	}
	if cfg.Sweep.GracePeriod < 0 {
		return fmt.Errorf("SWEEP_GRACE_PERIOD must be >= 0")
	}

	if cfg.PublicBaseURL != "" {
		u, err := url.Parse(cfg.PublicBaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("PUBLIC_BASE_URL must be an absolute http(s) URL, got %q", cfg.PublicBaseURL)
		}
	}

	switch cfg.Storage.Driver {
	case DriverLocal:
		if strings.TrimSpace(cfg.Storage.Dir) == "" {
			return fmt.Errorf("STORAGE_DIR must not be empty")
		}
	case DriverMinIO:
		if cfg.MinIO.Endpoint == "" || cfg.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for STORAGE_DRIVER=minio")
		}
	case DriverS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for STORAGE_DRIVER=s3")
		}
	case DriverGCS:
		if cfg.GCS.Bucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, minio, s3, gcs")
	}

	if isProdLike(cfg.AppEnv) && cfg.DatabaseURL == "" && cfg.DB.Host == "" {
		return fmt.Errorf("in prod/release DATABASE_URL or DB_HOST must be set")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}
