package repository

import (
	"context"
	"errors"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// ReadingStore 心率记录存储（按用户分区）
// FetchHistory 返回的顺序为写入顺序（采集时间升序），展示顺序由 stats.SortedByRecency 决定
type ReadingStore interface {
	FetchHistory(ctx context.Context, userID string) ([]models.Reading, error)
	SaveReading(ctx context.Context, userID string, reading models.Reading) (models.Reading, error)
}

// UserRepository 用户资料存储
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.UserData, error)
	SaveUser(ctx context.Context, user models.UserData) error
	UpdateProfile(ctx context.Context, uid string, patch models.ProfilePatch) (*models.UserData, error)
}

// Credential 登录凭据（只保存哈希）
type Credential struct {
	UserID       string
	Email        string
	AccountHash  string
	PasswordHash string
}

// CredentialRepository 凭据存储，按 account_hash 唯一
type CredentialRepository interface {
	// CreateCredential account_hash 已存在时返回 ErrAlreadyExists
	CreateCredential(ctx context.Context, cred Credential) error
	GetCredential(ctx context.Context, accountHash string) (*Credential, error)
	DeleteCredential(ctx context.Context, userID string) error
}
