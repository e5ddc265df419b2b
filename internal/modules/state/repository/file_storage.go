package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	"github.com/samber/oops"
)

// FileStorage implements Store with a JSON document on disk
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage creates a file-backed store, creating the parent directory
func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, oops.With("path", path, "context", "failed to create state directory").Wrap(err)
	}

	return &FileStorage{path: path}, nil
}

func (s *FileStorage) Load(ctx context.Context) (*domain.BotState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.New(), nil
		}
		return nil, oops.With("path", s.path, "context", "failed to read state").Wrap(err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.With("path", s.path, "context", "failed to unmarshal state").Wrap(err)
	}

	return domain.FromDocument(&doc), nil
}

func (s *FileStorage) Save(ctx context.Context, state *domain.BotState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state.ToDocument(), "", "  ")
	if err != nil {
		return oops.With("path", s.path, "context", "failed to marshal state").Wrap(err)
	}

	// write to a sibling file and rename so a crash never leaves half a document
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return oops.With("path", tmp, "context", "failed to write state").Wrap(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return oops.With("path", s.path, "context", "failed to replace state").Wrap(err)
	}

	return nil
}

func (s *FileStorage) Close(ctx context.Context) error {
	return nil
}
