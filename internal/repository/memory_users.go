package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"
)

// MemoryUserRepository DB 未就绪时使用的内存实现
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.UserData
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]models.UserData{}}
}

var _ UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) GetUser(_ context.Context, uid string) (*models.UserData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) SaveUser(_ context.Context, user models.UserData) error {
	if user.UID == "" {
		return fmt.Errorf("uid is required")
	}
	if user.FullName == "" {
		user.FullName = "User"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UID] = user
	return nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, uid string, patch models.ProfilePatch) (*models.UserData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&u)
	r.users[uid] = u
	return &u, nil
}
