package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"elibrary/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the pooled connection resource handed to the repositories.
// Every request borrows a connection from Pool through Gorm and gives it back
// when its statement or transaction finishes, whatever the outcome.
type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
	Gorm *gorm.DB
}

// PoolConfig turns the application config into a pgxpool configuration.
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	poolCfg.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.DBHealthCheckEvery
	poolCfg.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	return poolCfg, nil
}

// Open creates the pgx pool, verifies it and layers database/sql and GORM on top.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		// close the pool if ping fails to avoid resource leak
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		// slow statements only; request logging happens in middleware
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	logger.Info("database_connected",
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns,
	)

	return &DB{Pool: pool, SQL: sqlDB, Gorm: gdb}, nil
}

// Ping checks that a pooled connection can still be acquired.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close releases the sql.DB wrapper first, then the pool underneath it.
func (d *DB) Close() {
	if d == nil {
		return
	}
	if d.SQL != nil {
		d.SQL.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
}
