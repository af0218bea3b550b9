package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Samuel009-alt/heart-rate-app/internal/repository"

	"github.com/google/uuid"
)

// CredentialStore 凭据校验，持久化交给 CredentialRepository
// - accountHash = sha256(lower(email))
// - passwordHash = sha256(lower(email) + ":" + password)
type CredentialStore struct {
	repo repository.CredentialRepository
}

func NewCredentialStore(repo repository.CredentialRepository) *CredentialStore {
	return &CredentialStore{repo: repo}
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func normalizeAccount(account string) string {
	return strings.TrimSpace(strings.ToLower(account))
}

func HashAccount(account string) string {
	return sha256Hex(normalizeAccount(account))
}

func HashAccountPassword(account, password string) string {
	return sha256Hex(normalizeAccount(account) + ":" + password)
}

// Create 新建凭据；账号已存在返回 ErrEmailTaken
func (s *CredentialStore) Create(ctx context.Context, email, password string) (repository.Credential, error) {
	c := repository.Credential{
		UserID:       uuid.NewString(),
		Email:        normalizeAccount(email),
		AccountHash:  HashAccount(email),
		PasswordHash: HashAccountPassword(email, password),
	}
	if err := s.repo.CreateCredential(ctx, c); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return repository.Credential{}, ErrEmailTaken
		}
		return repository.Credential{}, fmt.Errorf("failed to create account: %w", err)
	}
	return c, nil
}

// Verify 校验账号密码；账号不存在与密码错误同样返回 ErrInvalidCredentials
func (s *CredentialStore) Verify(ctx context.Context, email, password string) (repository.Credential, error) {
	c, err := s.repo.GetCredential(ctx, HashAccount(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Credential{}, ErrInvalidCredentials
		}
		return repository.Credential{}, fmt.Errorf("failed to load account: %w", err)
	}
	want := HashAccountPassword(email, password)
	if subtle.ConstantTimeCompare([]byte(c.PasswordHash), []byte(want)) != 1 {
		return repository.Credential{}, ErrInvalidCredentials
	}
	return *c, nil
}

// Delete 删除账号凭据
func (s *CredentialStore) Delete(ctx context.Context, userID string) error {
	return s.repo.DeleteCredential(ctx, userID)
}
