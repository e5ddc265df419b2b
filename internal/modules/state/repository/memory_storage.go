package repository

import (
	"context"
	"sync"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
)

// MemoryStorage keeps the document in process. Used for dry runs and tests.
type MemoryStorage struct {
	mu    sync.Mutex
	doc   *domain.Document
	saves int
	err   error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load(ctx context.Context) (*domain.BotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.FromDocument(s.doc), nil
}

func (s *MemoryStorage) Save(ctx context.Context, state *domain.BotState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.doc = state.ToDocument()
	s.saves++
	return nil
}

func (s *MemoryStorage) Close(ctx context.Context) error {
	return nil
}

// FailWith makes every following Save return err. Pass nil to recover.
func (s *MemoryStorage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Saves reports how many documents were written
func (s *MemoryStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
