package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// backoff doubles from one second, capped at sixteen
func backoff(attempt int) time.Duration {
	d := time.Second << (attempt - 1)
	if d > 16*time.Second {
		d = 16 * time.Second
	}
	return d
}

// InitDatabase opens and pings the configured database, retrying while the
// server comes up. Cancelling ctx stops the retries.
func InitDatabase(ctx context.Context, cfg DatabaseConfig) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 5
	}

	entry := log.WithFields(logrus.Fields{
		"db_driver": cfg.kind(),
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	})
	entry.Info("Initializing database connection")

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		db, err := connect(ctx, dialector, cfg.pool())
		if err == nil {
			entry.WithField("attempt", attempt).Info("Database initialized successfully")
			return db, nil
		}

		entry.WithFields(logrus.Fields{"attempt": attempt, "max_attempts": attempts}).
			WithError(err).Warn("Database connection attempt failed")
		if attempt == attempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
}

func connect(ctx context.Context, dialector gorm.Dialector, pool poolSettings) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetConnMaxLifetime(pool.maxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// gormLogger routes slow query and error reports through logrus
func gormLogger() gormlogger.Interface {
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
