package service

import (
	"context"
	"errors"
	"testing"

	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateIsWriteThrough(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStorage()
	svc := New(store)

	err := svc.Update(ctx, func(state *domain.BotState) error {
		state.Filters["a"] = &filterDomain.Filter{Keyword: "a", Kind: filterDomain.KindFile}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Saves())

	reloaded := New(store)
	require.NoError(t, reloaded.Load(ctx))
	reloaded.View(func(state *domain.BotState) {
		assert.Contains(t, state.Filters, "a")
	})
}

func TestUpdateKeepsMemoryOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStorage()
	svc := New(store)
	store.FailWith(errors.New("disk full"))

	err := svc.Update(ctx, func(state *domain.BotState) error {
		state.Protect = true
		return nil
	})
	require.Error(t, err)

	svc.View(func(state *domain.BotState) {
		assert.False(t, state.Protect)
	})
}

func TestUpdateKeepsMemoryOnMutationError(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStorage()
	svc := New(store)
	boom := errors.New("boom")

	err := svc.Update(ctx, func(state *domain.BotState) error {
		state.LastFilter = "x"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Saves())
	svc.View(func(state *domain.BotState) {
		assert.Empty(t, state.LastFilter)
	})
}
