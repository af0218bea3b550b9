package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredential() Credential {
	return Credential{UserID: "user-1", Email: "ada@example.com", AccountHash: "ah-1", PasswordHash: "ph-1"}
}

func TestPostgresCredentialRepository_CreateCredential(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCredentialRepository(db)

	mock.ExpectExec(`INSERT INTO user_credentials`).
		WithArgs("user-1", "ada@example.com", "ah-1", "ph-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateCredential(context.Background(), testCredential())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCredentialRepository_CreateCredential_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCredentialRepository(db)

	mock.ExpectExec(`INSERT INTO user_credentials .* ON CONFLICT \(account_hash\) DO NOTHING`).
		WithArgs("user-1", "ada@example.com", "ah-1", "ph-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateCredential(context.Background(), testCredential())

	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCredentialRepository_CreateCredential_RequiresHashes(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCredentialRepository(db)

	err := repo.CreateCredential(context.Background(), Credential{UserID: "user-1"})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCredentialRepository_GetCredential(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCredentialRepository(db)

	mock.ExpectQuery(`SELECT user_id, email, account_hash, password_hash`).
		WithArgs("ah-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "account_hash", "password_hash"}).
			AddRow("user-1", "ada@example.com", "ah-1", "ph-1"))

	c, err := repo.GetCredential(context.Background(), "ah-1")

	require.NoError(t, err)
	assert.Equal(t, testCredential(), *c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCredentialRepository_GetCredential_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCredentialRepository(db)

	mock.ExpectQuery(`SELECT user_id, email`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetCredential(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCredentialRepository_DeleteCredential(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCredentialRepository(db)

	mock.ExpectExec(`DELETE FROM user_credentials WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM user_credentials`).
		WithArgs("user-2").
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repo.DeleteCredential(context.Background(), "user-1"))
	assert.Error(t, repo.DeleteCredential(context.Background(), "user-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
