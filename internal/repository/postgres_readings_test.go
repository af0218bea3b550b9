package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestPostgresReadingStore_FetchHistory(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresReadingStore(db)

	rows := sqlmock.NewRows([]string{"reading_id", "bpm", "captured_at"}).
		AddRow("r-1", 72, int64(1700000000000)).
		AddRow("r-2", 95, int64(1700000060000))

	mock.ExpectQuery(`SELECT reading_id, bpm, captured_at\s+FROM heart_rate_readings`).
		WithArgs("user-1").
		WillReturnRows(rows)

	readings, err := repo.FetchHistory(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, models.Reading{ID: "r-1", BPM: 72, Timestamp: 1700000000000}, readings[0])
	assert.Equal(t, 95, readings[1].BPM)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadingStore_FetchHistory_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresReadingStore(db)

	mock.ExpectQuery(`SELECT reading_id`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"reading_id", "bpm", "captured_at"}))

	readings, err := repo.FetchHistory(context.Background(), "user-1")

	require.NoError(t, err)
	assert.NotNil(t, readings)
	assert.Len(t, readings, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadingStore_FetchHistory_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresReadingStore(db)

	mock.ExpectQuery(`SELECT reading_id`).
		WithArgs("user-1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FetchHistory(context.Background(), "user-1")

	assert.ErrorContains(t, err, "failed to query readings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadingStore_SaveReading_AssignsID(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresReadingStore(db)

	mock.ExpectExec(`INSERT INTO heart_rate_readings`).
		WithArgs(sqlmock.AnyArg(), "user-1", 78, int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := repo.SaveReading(context.Background(), "user-1", models.Reading{BPM: 78, Timestamp: 1700000000000})

	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 78, saved.BPM)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadingStore_SaveReading_RequiresUser(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresReadingStore(db)

	_, err := repo.SaveReading(context.Background(), "", models.Reading{BPM: 78})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
