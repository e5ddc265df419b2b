package repository

import (
	"context"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
)

// Store persists the single bot state document.
// Save replaces the whole document; Load returns an empty state when
// nothing has been stored yet.
type Store interface {
	Load(ctx context.Context) (*domain.BotState, error)
	Save(ctx context.Context, state *domain.BotState) error
	Close(ctx context.Context) error
}
