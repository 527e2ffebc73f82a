package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// Connect opens PostgreSQL for URL or key/value DSNs and falls back to
// SQLite (pure Go driver) for anything else, e.g. a file path or ":memory:".
func Connect(dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(o.logLevel)}

	if IsPostgres(dsn) {
		log.Println("Connecting to PostgreSQL...")
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(30 * time.Minute)
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, nil
	}

	log.Println("Using SQLite for local development:", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		gormCfg,
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; also keeps ":memory:" on a single database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

type options struct {
	logLevel logger.LogLevel
}

type Option func(*options)

// WithLogLevel maps LOG_LEVEL values onto gorm's logger.
func WithLogLevel(level string) Option {
	return func(o *options) {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "debug":
			o.logLevel = logger.Info
		case "error":
			o.logLevel = logger.Error
		case "silent", "off":
			o.logLevel = logger.Silent
		default:
			o.logLevel = logger.Warn
		}
	}
}
