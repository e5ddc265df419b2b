package service

import (
	"context"
	"errors"
	"testing"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	stateDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/repository"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *stateService.Service, *repository.MemoryStorage) {
	t.Helper()
	store := repository.NewMemoryStorage()
	state := stateService.New(store)
	return New(state), state, store
}

func labels(n int) []domain.Button {
	out := make([]domain.Button, n)
	for i := range out {
		out[i] = domain.Button{Text: string(rune('a' + i))}
	}
	return out
}

func texts(buttons []domain.Button) string {
	s := ""
	for _, b := range buttons {
		s += b.Text
	}
	return s
}

func TestCreateNormalisesAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	f, err := svc.Create(ctx, "  #Movie1 ", domain.KindFile)
	require.NoError(t, err)
	assert.Equal(t, "movie1", f.Keyword)

	_, err = svc.Create(ctx, "MOVIE1", domain.KindButton)
	assert.ErrorIs(t, err, sharedErrors.ErrDuplicateKeyword)

	_, err = svc.Create(ctx, "   ", domain.KindButton)
	assert.ErrorIs(t, err, sharedErrors.ErrInvalidFormat)
}

func TestKindsAreExclusive(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "files", domain.KindFile)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "links", domain.KindButton)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.AppendFile(ctx, "links", 5), sharedErrors.ErrKindConflict)
	assert.ErrorIs(t, svc.AddButtons(ctx, "files", labels(1)), sharedErrors.ErrKindConflict)
	assert.ErrorIs(t, svc.AppendFile(ctx, "nope", 5), sharedErrors.ErrNotFound)
}

func TestDeleteButtonsDescendingKeepsOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "k", domain.KindButton)
	require.NoError(t, err)
	require.NoError(t, svc.AddButtons(ctx, "k", labels(7)))

	n, err := svc.DeleteButtons(ctx, "k", []int{5, 4, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, _ := svc.Get("k")
	assert.Equal(t, "acfg", texts(f.Buttons))
}

func TestDeleteButtonsOutOfRangeChangesNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "k", domain.KindButton)
	require.NoError(t, err)
	require.NoError(t, svc.AddButtons(ctx, "k", labels(3)))

	_, err = svc.DeleteButtons(ctx, "k", []int{1, 4})
	assert.ErrorIs(t, err, sharedErrors.ErrIndexOutOfRange)

	f, _ := svc.Get("k")
	assert.Equal(t, "abc", texts(f.Buttons))
}

func TestSwapTwiceIsIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "k", domain.KindButton)
	require.NoError(t, err)
	require.NoError(t, svc.AddButtons(ctx, "k", labels(4)))

	require.NoError(t, svc.SwapButtons(ctx, "k", [][2]int{{1, 3}}))
	f, _ := svc.Get("k")
	assert.Equal(t, "cbad", texts(f.Buttons))

	require.NoError(t, svc.SwapButtons(ctx, "k", [][2]int{{1, 3}}))
	f, _ = svc.Get("k")
	assert.Equal(t, "abcd", texts(f.Buttons))
}

func TestSwapValidatesAllPairsFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "k", domain.KindButton)
	require.NoError(t, err)
	require.NoError(t, svc.AddButtons(ctx, "k", labels(3)))

	err = svc.SwapButtons(ctx, "k", [][2]int{{1, 2}, {3, 9}})
	assert.ErrorIs(t, err, sharedErrors.ErrIndexOutOfRange)

	f, _ := svc.Get("k")
	assert.Equal(t, "abc", texts(f.Buttons))
}

func TestMergeConcatenatesInSourceOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "a", domain.KindFile)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "b", domain.KindFile)
	require.NoError(t, err)
	require.NoError(t, svc.AppendFile(ctx, "a", 1))
	require.NoError(t, svc.AppendFile(ctx, "a", 2))
	require.NoError(t, svc.AppendFile(ctx, "b", 3))

	merged, err := svc.Merge(ctx, "target", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []domain.FileRef{1, 2, 3}, merged.Files)
	assert.Equal(t, domain.KindFile, merged.Kind)
	assert.False(t, svc.Exists("a"))
	assert.False(t, svc.Exists("b"))
}

func TestMergeAbortsWithoutPartialChanges(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "a", domain.KindFile)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "taken", domain.KindFile)
	require.NoError(t, err)

	_, err = svc.Merge(ctx, "target", []string{"a", "missing"})
	assert.ErrorIs(t, err, sharedErrors.ErrNotFound)
	assert.True(t, svc.Exists("a"))
	assert.False(t, svc.Exists("target"))

	_, err = svc.Merge(ctx, "taken", []string{"a"})
	assert.ErrorIs(t, err, sharedErrors.ErrDuplicateKeyword)
	assert.True(t, svc.Exists("a"))
}

func TestRenameToExistingKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Create(ctx, "foo", domain.KindFile)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bar", domain.KindFile)
	require.NoError(t, err)
	require.NoError(t, svc.AppendFile(ctx, "foo", 9))

	err = svc.Rename(ctx, "foo", "bar")
	assert.ErrorIs(t, err, sharedErrors.ErrDuplicateKeyword)

	f, ok := svc.Get("foo")
	require.True(t, ok)
	assert.Equal(t, []domain.FileRef{9}, f.Files)

	assert.ErrorIs(t, svc.Rename(ctx, "ghost", "x"), sharedErrors.ErrNotFound)
}

func TestRenameAndDeleteFollowActivePointer(t *testing.T) {
	ctx := context.Background()
	svc, state, _ := newService(t)
	_, err := svc.Create(ctx, "foo", domain.KindFile)
	require.NoError(t, err)
	require.NoError(t, state.Update(ctx, func(st *stateDomain.BotState) error {
		st.LastFilter = "foo"
		return nil
	}))

	require.NoError(t, svc.Rename(ctx, "foo", "baz"))
	state.View(func(st *stateDomain.BotState) { assert.Equal(t, "baz", st.LastFilter) })

	require.NoError(t, svc.Delete(ctx, "baz"))
	state.View(func(st *stateDomain.BotState) { assert.Empty(t, st.LastFilter) })
	assert.ErrorIs(t, svc.Delete(ctx, "baz"), sharedErrors.ErrNotFound)
}

func TestPersistenceFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newService(t)
	store.FailWith(errors.New("unavailable"))

	_, err := svc.Create(ctx, "x", domain.KindFile)
	require.Error(t, err)
	assert.False(t, svc.Exists("x"))
}

func TestByShortID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	created, err := svc.Create(ctx, "anime", domain.KindButton)
	require.NoError(t, err)

	f, ok := svc.ByShortID(created.ShortID())
	require.True(t, ok)
	assert.Equal(t, "anime", f.Keyword)

	_, ok = svc.ByShortID("ffff")
	assert.False(t, ok)
	assert.Equal(t, []string{"anime"}, svc.Keywords())
}
