package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/common/config"

	_ "github.com/lib/pq"
)

// NewPostgresDB 创建PostgreSQL数据库连接
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 设置连接池参数
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema 创建心率记录、用户资料与登录凭据表（幂等）
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS heart_rate_readings (
			reading_id  TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			bpm         INTEGER NOT NULL CHECK (bpm >= 0),
			captured_at BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_heart_rate_readings_user
			ON heart_rate_readings (user_id, captured_at)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id           TEXT PRIMARY KEY,
			full_name         TEXT,
			email             TEXT,
			age               INTEGER,
			gender            TEXT,
			phone_number      TEXT,
			address           TEXT,
			profile_image_url TEXT,
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS user_credentials (
			user_id       TEXT PRIMARY KEY,
			email         TEXT NOT NULL,
			account_hash  TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close 关闭数据库连接
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
