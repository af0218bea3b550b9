package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresCredentialRepository 凭据 Postgres 实现（user_credentials 表）
type PostgresCredentialRepository struct {
	db *sql.DB
}

func NewPostgresCredentialRepository(db *sql.DB) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{db: db}
}

var _ CredentialRepository = (*PostgresCredentialRepository)(nil)

func (r *PostgresCredentialRepository) CreateCredential(ctx context.Context, cred Credential) error {
	if cred.UserID == "" || cred.AccountHash == "" || cred.PasswordHash == "" {
		return fmt.Errorf("user_id, account_hash, and password_hash are required")
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user_credentials (user_id, email, account_hash, password_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_hash) DO NOTHING`,
		cred.UserID, cred.Email, cred.AccountHash, cred.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// GetCredential 按 account_hash 查询，不存在返回 ErrNotFound
func (r *PostgresCredentialRepository) GetCredential(ctx context.Context, accountHash string) (*Credential, error) {
	var c Credential
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, account_hash, password_hash
		   FROM user_credentials
		  WHERE account_hash = $1`,
		accountHash,
	).Scan(&c.UserID, &c.Email, &c.AccountHash, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &c, nil
}

func (r *PostgresCredentialRepository) DeleteCredential(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_credentials WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
