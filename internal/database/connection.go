package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kitchen-flow/internal/config"
	"kitchen-flow/internal/logger"
)

// DB is the PostgreSQL pool shared by the usuarios, productos, mesas and
// comandas repositories.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens the pool and waits for PostgreSQL to answer a ping. Start-up
// often races the database container, so failed attempts back off linearly
// up to database.connect_retries times.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	attempts := cfg.Database.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		pool, err := open(ctx, poolConfig)
		if err == nil {
			return &DB{Pool: pool}, nil
		}
		if attempt == attempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}

		wait := time.Duration(attempt) * 2 * time.Second
		log.Warn("db_connection_retry", fmt.Sprintf("PostgreSQL not ready, retrying in %v", wait), "startup", map[string]interface{}{
			"attempt": attempt,
			"host":    cfg.Database.Host,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func open(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Now asks the server for its clock; /api/db-test reports it.
func (db *DB) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	err := db.Pool.QueryRow(ctx, SelectNowSQL).Scan(&now)
	return now, err
}

func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	return db.Pool.Begin(ctx)
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.Pool.Query(ctx, sql, args...)
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.Pool.QueryRow(ctx, sql, args...)
}
