package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"

	"github.com/google/uuid"
)

// PostgresReadingStore 心率记录 Postgres 实现
type PostgresReadingStore struct {
	db *sql.DB
}

// NewPostgresReadingStore 创建心率记录 Repository
func NewPostgresReadingStore(db *sql.DB) *PostgresReadingStore {
	return &PostgresReadingStore{db: db}
}

// 确保实现了接口
var _ ReadingStore = (*PostgresReadingStore)(nil)

// FetchHistory 读取用户全部记录
func (r *PostgresReadingStore) FetchHistory(ctx context.Context, userID string) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT reading_id, bpm, captured_at
		 FROM heart_rate_readings
		 WHERE user_id = $1
		 ORDER BY captured_at ASC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	readings := []models.Reading{}
	for rows.Next() {
		var rd models.Reading
		if err := rows.Scan(&rd.ID, &rd.BPM, &rd.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}
	return readings, nil
}

// SaveReading 写入一条记录；ID 为空时生成 uuid
func (r *PostgresReadingStore) SaveReading(ctx context.Context, userID string, reading models.Reading) (models.Reading, error) {
	if userID == "" {
		return models.Reading{}, fmt.Errorf("user_id is required")
	}
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO heart_rate_readings (reading_id, user_id, bpm, captured_at)
		 VALUES ($1, $2, $3, $4)`,
		reading.ID, userID, reading.BPM, reading.Timestamp,
	)
	if err != nil {
		return models.Reading{}, fmt.Errorf("failed to insert reading: %w", err)
	}
	return reading, nil
}
