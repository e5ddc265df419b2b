package service

import (
	"context"
	"errors"
	"testing"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/domain"
	"github.com/stretchr/testify/assert"
)

type fakeChecker map[int64]domain.Membership

func (f fakeChecker) Membership(_ context.Context, chatID, _ int64) (domain.Membership, error) {
	m, ok := f[chatID]
	if !ok {
		return domain.Membership{}, errors.New("chat not found")
	}
	return m, nil
}

var channels = []domain.Channel{
	{ID: -1001, Name: "News", Link: "https://t.me/news"},
	{ID: -1002, Name: "Updates", Link: "https://t.me/updates"},
}

func TestJoined(t *testing.T) {
	tests := []struct {
		membership domain.Membership
		joined     bool
	}{
		{domain.Membership{Status: domain.StatusOwner}, true},
		{domain.Membership{Status: domain.StatusAdministrator}, true},
		{domain.Membership{Status: domain.StatusMember}, true},
		{domain.Membership{Status: domain.StatusRestricted, IsMember: true}, true},
		{domain.Membership{Status: domain.StatusRestricted}, false},
		{domain.Membership{Status: domain.StatusLeft}, false},
		{domain.Membership{Status: domain.StatusKicked}, false},
		{domain.Membership{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.joined, tt.membership.Joined(), tt.membership.Status)
	}
}

func TestMissingIsConjunction(t *testing.T) {
	ctx := context.Background()
	svc := New(fakeChecker{
		-1001: {Status: domain.StatusMember},
		-1002: {Status: domain.StatusLeft},
	}, channels)

	missing := svc.Missing(ctx, 5)
	assert.Equal(t, []domain.Channel{channels[1]}, missing)
	assert.False(t, svc.IsMember(ctx, 5))
}

func TestLookupErrorFailsClosed(t *testing.T) {
	ctx := context.Background()
	svc := New(fakeChecker{-1001: {Status: domain.StatusMember}}, channels)
	assert.False(t, svc.IsMember(ctx, 5))
}

func TestAllJoined(t *testing.T) {
	ctx := context.Background()
	svc := New(fakeChecker{
		-1001: {Status: domain.StatusAdministrator},
		-1002: {Status: domain.StatusRestricted, IsMember: true},
	}, channels)
	assert.True(t, svc.IsMember(ctx, 5))
	assert.Empty(t, svc.Missing(ctx, 5))
}

func TestNoRequiredChannels(t *testing.T) {
	svc := New(fakeChecker{}, nil)
	assert.True(t, svc.IsMember(context.Background(), 5))
}
