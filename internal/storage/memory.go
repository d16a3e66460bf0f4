package storage

import (
	"context"
	"sync"

	"github.com/cuceimatch/matchcore/internal/model"
)

// MemoryStore - 프로세스 메모리에만 보관하는 credential store (테스트, STORAGE_DRIVER=memory)
type MemoryStore struct {
	mu    sync.Mutex
	entry *model.PersistedSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (model.PersistedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == nil {
		return model.PersistedSession{}, nil
	}
	return *s.entry, nil
}

func (s *MemoryStore) Save(ctx context.Context, session model.PersistedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &session
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
	return nil
}
