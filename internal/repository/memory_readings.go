package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"

	"github.com/google/uuid"
)

// MemoryReadingStore DB 未就绪时使用的内存实现（按写入顺序保存）
type MemoryReadingStore struct {
	mu       sync.RWMutex
	byUserID map[string][]models.Reading
}

func NewMemoryReadingStore() *MemoryReadingStore {
	return &MemoryReadingStore{byUserID: map[string][]models.Reading{}}
}

var _ ReadingStore = (*MemoryReadingStore)(nil)

func (s *MemoryReadingStore) FetchHistory(_ context.Context, userID string) ([]models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.byUserID[userID]
	out := make([]models.Reading, len(src))
	copy(out, src)
	return out, nil
}

func (s *MemoryReadingStore) SaveReading(_ context.Context, userID string, reading models.Reading) (models.Reading, error) {
	if userID == "" {
		return models.Reading{}, fmt.Errorf("user_id is required")
	}
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUserID[userID] = append(s.byUserID[userID], reading)
	return reading, nil
}
