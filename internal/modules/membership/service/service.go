package service

import (
	"context"
	"log/slog"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/domain"
	"github.com/samber/lo"
)

// Checker looks up a user's membership in a chat
type Checker interface {
	Membership(ctx context.Context, chatID, userID int64) (domain.Membership, error)
}

// Service gates content behind membership of the required channels.
// A failed lookup counts as not joined.
type Service struct {
	checker  Checker
	channels []domain.Channel
}

// New creates a new membership service
func New(checker Checker, channels []domain.Channel) *Service {
	return &Service{
		checker:  checker,
		channels: channels,
	}
}

// Channels returns the configured required channels
func (s *Service) Channels() []domain.Channel {
	return append([]domain.Channel(nil), s.channels...)
}

// Missing returns the required channels userID has not joined, in
// configured order
func (s *Service) Missing(ctx context.Context, userID int64) []domain.Channel {
	return lo.Filter(s.channels, func(ch domain.Channel, _ int) bool {
		m, err := s.checker.Membership(ctx, ch.ID, userID)
		if err != nil {
			slog.Warn("Membership check failed", "chat_id", ch.ID, "user_id", userID, "error", err)
			return true
		}
		return !m.Joined()
	})
}

// IsMember reports whether userID joined every required channel
func (s *Service) IsMember(ctx context.Context, userID int64) bool {
	return len(s.Missing(ctx, userID)) == 0
}
