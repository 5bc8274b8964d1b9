package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the process-wide connection pool. Every repository runs on it,
// directly or through a transaction it opens.
var DB *pgxpool.Pool

// Pool sizing for a single-instance deployment: chat and notification
// traffic holds connections briefly, but booking transactions take an
// advisory lock per instructor and can queue behind each other, so the
// ceiling stays well above the minimum.
const (
	poolMaxConns        = 16
	poolMinConns        = 4
	poolMaxConnLifetime = 2 * time.Hour
	poolMaxConnIdleTime = 15 * time.Minute
	connectTimeout      = 5 * time.Second
)

func ConnectDB(dbURL string) error {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}

	cfg.MaxConns = poolMaxConns
	cfg.MinConns = poolMinConns
	cfg.MaxConnLifetime = poolMaxConnLifetime
	cfg.MaxConnIdleTime = poolMaxConnIdleTime

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	DB = pool
	log.Println("Connected to PostgreSQL")
	return nil
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}
