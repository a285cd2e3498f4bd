package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubtrips/internal/shared/config"
	"clubtrips/pkg/cache"
	"clubtrips/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds database connections
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
	log        *logger.Logger
}

// InitDB opens PostgreSQL, applies migrations and connects to Redis
func InitDB(ctx context.Context, cfg *config.Config, log *logger.Logger) (*DB, error) {
	pg, err := initPostgreSQL(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	log.Info("PostgreSQL connected successfully")

	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb, err := cache.Connect(ctx, cache.Config{
		Address:  cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	log.Info("Redis connected successfully")

	return &DB{
		PostgreSQL: pg,
		Redis:      rdb,
		log:        log,
	}, nil
}

func initPostgreSQL(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	var gormLogger gormlogger.Interface
	if cfg.IsDevelopment() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	} else {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes all database connections
func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close PostgreSQL: %w", err))
			}
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing databases: %w", err)
	}

	if db.log != nil {
		db.log.Info("All database connections closed")
	}
	return nil
}

// HealthCheck pings every backing store
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.PostgreSQL != nil {
		sqlDB, err := db.PostgreSQL.DB()
		if err != nil {
			return fmt.Errorf("PostgreSQL health check failed: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("PostgreSQL ping failed: %w", err)
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	return nil
}
