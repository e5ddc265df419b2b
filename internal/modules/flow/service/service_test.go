package service

import (
	"context"
	"errors"
	"testing"
	"time"

	deliveryDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/delivery/domain"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	filterService "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/service"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/domain"
	settingsService "github.com/reshetovitsme/keyword-share-bot/internal/modules/settings/service"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/repository"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	userService "github.com/reshetovitsme/keyword-share-bot/internal/modules/user/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = 1

type fakeRepublisher struct {
	err   error
	calls int
}

func (f *fakeRepublisher) Republish(_ context.Context, _ string, refs []filterDomain.FileRef) ([]filterDomain.FileRef, deliveryDomain.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, deliveryDomain.Report{}, f.err
	}
	out := make([]filterDomain.FileRef, len(refs))
	for i, ref := range refs {
		out[i] = ref + 1000
	}
	return out, deliveryDomain.Report{Sent: len(refs)}, nil
}

type fixture struct {
	engine      *Engine
	state       *stateService.Service
	store       *repository.MemoryStorage
	filters     *filterService.Service
	users       *userService.Service
	settings    *settingsService.Service
	republisher *fakeRepublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStorage()
	state := stateService.New(store)
	f := &fixture{
		state:       state,
		store:       store,
		filters:     filterService.New(state),
		users:       userService.New(state, admin),
		settings:    settingsService.New(state),
		republisher: &fakeRepublisher{},
	}
	f.engine = New(state, f.filters, f.users, f.settings, f.republisher)
	return f
}

func (f *fixture) send(t *testing.T, text string) Reply {
	t.Helper()
	reply, handled, err := f.engine.Handle(context.Background(), admin, Input{Text: text})
	require.NoError(t, err)
	require.True(t, handled)
	return reply
}

func TestButtonCreationFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Start(ctx, admin, domain.StepFilterName, "", 0)
	require.NoError(t, err)

	reply := f.send(t, "Anime")
	assert.Contains(t, reply.Text, "'anime' created")
	session, ok := f.engine.Current(admin)
	require.True(t, ok)
	assert.Equal(t, domain.StepFilterButtons, session.Step)
	assert.Equal(t, "anime", session.Keyword)

	reply = f.send(t, "A = http://x.com, B = http://y.com")
	require.NotNil(t, reply.View)
	assert.Equal(t, "anime", reply.View.Keyword)

	filter, ok := f.filters.Get("anime")
	require.True(t, ok)
	assert.Equal(t, []filterDomain.Button{
		{Text: "A", Link: "http://x.com"},
		{Text: "B", Link: "http://y.com"},
	}, filter.Buttons)

	_, ok = f.engine.Current(admin)
	assert.False(t, ok)
}

func TestInvalidInputRepromptsWithoutAdvancing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.filters.Create(ctx, "k", filterDomain.KindButton)
	require.NoError(t, err)
	require.NoError(t, f.filters.AddButtons(ctx, "k", []filterDomain.Button{{Text: "a"}, {Text: "b"}}))

	_, err = f.engine.Start(ctx, admin, domain.StepSwapPairs, "k", 0)
	require.NoError(t, err)

	reply := f.send(t, "1-9")
	assert.Contains(t, reply.Text, "Wrong button number")
	session, ok := f.engine.Current(admin)
	require.True(t, ok)
	assert.Equal(t, domain.StepSwapPairs, session.Step)

	reply = f.send(t, "nonsense")
	assert.Contains(t, reply.Text, "Wrong format")

	f.send(t, "1-2")
	filter, _ := f.filters.Get("k")
	assert.Equal(t, "b", filter.Buttons[0].Text)
	_, ok = f.engine.Current(admin)
	assert.False(t, ok)
}

func TestStartReplacesPreviousFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Start(ctx, admin, domain.StepRenameFrom, "", 0)
	require.NoError(t, err)
	_, err = f.engine.Start(ctx, admin, domain.StepBanId, "", 0)
	require.NoError(t, err)

	session, ok := f.engine.Current(admin)
	require.True(t, ok)
	assert.Equal(t, domain.StepBanId, session.Step)

	f.send(t, "77")
	assert.True(t, f.users.IsBanned(77))
}

func TestHandleWithoutFlow(t *testing.T) {
	f := newFixture(t)
	_, handled, err := f.engine.Handle(context.Background(), admin, Input{Text: "hello"})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Start(ctx, admin, domain.StepDeleteName, "", 0)
	require.NoError(t, err)

	reply := f.send(t, "/cancel")
	assert.Contains(t, reply.Text, "Cancelled")
	_, ok := f.engine.Current(admin)
	assert.False(t, ok)

	cancelled, err := f.engine.Cancel(ctx, admin)
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestRenameFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.filters.Create(ctx, "foo", filterDomain.KindFile)
	require.NoError(t, err)
	_, err = f.filters.Create(ctx, "bar", filterDomain.KindFile)
	require.NoError(t, err)

	_, err = f.engine.Start(ctx, admin, domain.StepRenameFrom, "", 0)
	require.NoError(t, err)

	reply := f.send(t, "ghost")
	assert.Contains(t, reply.Text, "Not found")

	f.send(t, "foo")
	reply = f.send(t, "bar")
	assert.Contains(t, reply.Text, "already exists")
	assert.True(t, f.filters.Exists("foo"))

	f.send(t, "baz")
	assert.True(t, f.filters.Exists("baz"))
	assert.False(t, f.filters.Exists("foo"))
}

func TestMergeFlowRepublishes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for kw, refs := range map[string][]filterDomain.FileRef{"a": {1, 2}, "b": {3}} {
		_, err := f.filters.Create(ctx, kw, filterDomain.KindFile)
		require.NoError(t, err)
		require.NoError(t, f.filters.SetFiles(ctx, kw, refs))
	}

	_, err := f.engine.Start(ctx, admin, domain.StepMergeTarget, "", 0)
	require.NoError(t, err)
	f.send(t, "all")
	reply := f.send(t, "a, b")
	assert.Contains(t, reply.Text, "Republished")

	merged, ok := f.filters.Get("all")
	require.True(t, ok)
	assert.Equal(t, []filterDomain.FileRef{1001, 1002, 1003}, merged.Files)
	assert.False(t, f.filters.Exists("a"))
	assert.False(t, f.filters.Exists("b"))
	assert.Equal(t, 1, f.republisher.calls)
}

func TestMergeKeepsOriginalRefsWhenRepublishFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.republisher.err = errors.New("channel unavailable")
	_, err := f.filters.Create(ctx, "a", filterDomain.KindFile)
	require.NoError(t, err)
	require.NoError(t, f.filters.SetFiles(ctx, "a", []filterDomain.FileRef{5}))

	_, err = f.engine.Start(ctx, admin, domain.StepMergeTarget, "", 0)
	require.NoError(t, err)
	f.send(t, "all")
	reply := f.send(t, "a")
	assert.Contains(t, reply.Text, "failed")

	merged, _ := f.filters.Get("all")
	assert.Equal(t, []filterDomain.FileRef{5}, merged.Files)
}

func TestAutoDeleteFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Start(ctx, admin, domain.StepAutoDelete, "", 0)
	require.NoError(t, err)

	f.send(t, "1h")
	assert.Equal(t, time.Hour, f.settings.AutoDelete())
}

func TestBanAdminReprompts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Start(ctx, admin, domain.StepBanId, "", 0)
	require.NoError(t, err)

	reply := f.send(t, "1")
	assert.Contains(t, reply.Text, "Not allowed")
	assert.False(t, f.users.IsBanned(admin))
}

func TestChannelForwardNeedsForward(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Start(ctx, admin, domain.StepChannelForward, "", 0)
	require.NoError(t, err)

	reply := f.send(t, "hello")
	assert.Contains(t, reply.Text, "Forward a message")

	reply, handled, err := f.engine.Handle(ctx, admin, Input{ForwardChatID: -100123, ForwardChatTitle: "Source"})
	require.NoError(t, err)
	require.True(t, handled)
	assert.Contains(t, reply.Text, "-100123")
}

func TestPersistenceErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Start(ctx, admin, domain.StepFilterName, "", 0)
	require.NoError(t, err)
	f.store.FailWith(errors.New("unavailable"))

	_, handled, err := f.engine.Handle(ctx, admin, Input{Text: "new"})
	assert.True(t, handled)
	require.Error(t, err)
	assert.False(t, f.filters.Exists("new"))
}

func TestEveryStepHasPrompt(t *testing.T) {
	for _, name := range domain.StepNames() {
		step, err := domain.ParseStep(name)
		require.NoError(t, err)
		assert.NotEqual(t, "Send /cancel to stop.", Prompt(step), name)
	}
}
