package service

import (
	"context"
	"testing"
	"time"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/repository"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleProtect(t *testing.T) {
	ctx := context.Background()
	svc := New(stateService.New(repository.NewMemoryStorage()))
	assert.False(t, svc.Protect())

	on, err := svc.ToggleProtect(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.Protect())

	on, err = svc.ToggleProtect(ctx)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestSetAutoDelete(t *testing.T) {
	ctx := context.Background()
	svc := New(stateService.New(repository.NewMemoryStorage()))

	require.NoError(t, svc.SetAutoDelete(ctx, 30*time.Minute))
	assert.Equal(t, 30*time.Minute, svc.AutoDelete())

	require.NoError(t, svc.SetAutoDelete(ctx, 0))
	assert.Zero(t, svc.AutoDelete())

	assert.ErrorIs(t, svc.SetAutoDelete(ctx, -time.Second), sharedErrors.ErrInvalidFormat)
}
