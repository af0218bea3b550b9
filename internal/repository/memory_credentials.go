package repository

import (
	"context"
	"sync"
)

// MemoryCredentialRepository DB 未就绪时使用，重启后账号丢失
type MemoryCredentialRepository struct {
	mu sync.RWMutex
	// accountHash -> credential
	byAccount map[string]Credential
}

func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{byAccount: map[string]Credential{}}
}

var _ CredentialRepository = (*MemoryCredentialRepository)(nil)

func (r *MemoryCredentialRepository) CreateCredential(_ context.Context, cred Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAccount[cred.AccountHash]; exists {
		return ErrAlreadyExists
	}
	r.byAccount[cred.AccountHash] = cred
	return nil
}

func (r *MemoryCredentialRepository) GetCredential(_ context.Context, accountHash string) (*Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byAccount[accountHash]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCredentialRepository) DeleteCredential(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, c := range r.byAccount {
		if c.UserID == userID {
			delete(r.byAccount, k)
		}
	}
	return nil
}
