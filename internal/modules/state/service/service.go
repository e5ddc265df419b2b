package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/repository"
	"github.com/samber/oops"
)

// Service owns the in-memory bot state and mirrors every change to the store.
//
// Writers are serialised by one lock. A mutation runs against a copy of the
// state, the copy is saved, and only a successful save replaces the working
// set, so memory and the store never diverge.
type Service struct {
	store repository.Store
	mu    sync.RWMutex
	state *domain.BotState
}

// New creates a state service with an empty working set
func New(store repository.Store) *Service {
	return &Service{
		store: store,
		state: domain.New(),
	}
}

// Load replaces the working set with the stored document
func (s *Service) Load(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	if err != nil {
		return oops.With("context", "failed to load bot state").Wrap(err)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	slog.Info("Bot state loaded", "filters", len(state.Filters), "users", len(state.Users), "banned", len(state.Banned))
	return nil
}

// View runs fn with read access to the current state. fn must not keep
// references to the state or mutate it.
func (s *Service) View(fn func(state *domain.BotState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Update applies fn to a copy of the state and persists it. If fn or the
// save fails the working set is left untouched.
func (s *Service) Update(ctx context.Context, fn func(state *domain.BotState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return oops.With("context", "failed to persist bot state").Wrap(err)
	}

	s.state = next
	return nil
}

func (s *Service) Close(ctx context.Context) error {
	return s.store.Close(ctx)
}
