package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	membershipDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/domain"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/reshetovitsme/keyword-share-bot/internal/shared/metrics"
	"github.com/samber/oops"
)

// Messenger is the outbound side of the bot: message copies for delivery,
// membership lookups and log channel notices. A call rejected with
// retry_after is retried once after the advised delay.
type Messenger struct {
	bot          *bot.Bot
	logChannelID int64
}

// NewMessenger creates a new Telegram messenger
func NewMessenger(b *bot.Bot, logChannelID int64) *Messenger {
	return &Messenger{
		bot:          b,
		logChannelID: logChannelID,
	}
}

func (m *Messenger) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int, protect bool) (int, error) {
	var copied *models.MessageID
	err := m.call(ctx, "copyMessage", func() (err error) {
		copied, err = m.bot.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:         toChatID,
			FromChatID:     fromChatID,
			MessageID:      messageID,
			ProtectContent: protect,
		})
		return err
	})
	if err != nil {
		return 0, oops.With("to", toChatID, "from", fromChatID, "message_id", messageID).Wrap(err)
	}
	return copied.ID, nil
}

func (m *Messenger) DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) error {
	err := m.call(ctx, "deleteMessages", func() error {
		_, err := m.bot.DeleteMessages(ctx, &bot.DeleteMessagesParams{
			ChatID:     chatID,
			MessageIDs: messageIDs,
		})
		return err
	})
	return oops.With("chat_id", chatID).Wrap(err)
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	var sent *models.Message
	err := m.call(ctx, "sendMessage", func() (err error) {
		sent, err = m.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		})
		return err
	})
	if err != nil {
		return 0, oops.With("chat_id", chatID).Wrap(err)
	}
	return sent.ID, nil
}

func (m *Messenger) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	err := m.call(ctx, "pinChatMessage", func() error {
		_, err := m.bot.PinChatMessage(ctx, &bot.PinChatMessageParams{
			ChatID:              chatID,
			MessageID:           messageID,
			DisableNotification: true,
		})
		return err
	})
	return oops.With("chat_id", chatID, "message_id", messageID).Wrap(err)
}

// Membership looks up userID in chatID
func (m *Messenger) Membership(ctx context.Context, chatID, userID int64) (membershipDomain.Membership, error) {
	var member *models.ChatMember
	err := m.call(ctx, "getChatMember", func() (err error) {
		member, err = m.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
			ChatID: chatID,
			UserID: userID,
		})
		return err
	})
	if err != nil {
		return membershipDomain.Membership{}, oops.
			With("chat_id", chatID, "user_id", userID).
			Wrapf(sharedErrors.ErrMembershipCheckFailed, "%v", err)
	}
	return membershipFromChatMember(member), nil
}

// Notify posts text to the log channel. Without a log channel it only logs.
func (m *Messenger) Notify(ctx context.Context, text string) error {
	if m.logChannelID == 0 {
		slog.Info("Log channel notice", "text", text)
		return nil
	}
	_, err := m.SendText(ctx, m.logChannelID, text)
	return err
}

func (m *Messenger) call(ctx context.Context, op string, fn func() error) error {
	err := fn()

	var tooMany *bot.TooManyRequestsError
	if !errors.As(err, &tooMany) {
		return err
	}

	metrics.RateLimited.Inc()
	wait := time.Duration(tooMany.RetryAfter) * time.Second
	slog.Warn("Rate limited by Telegram", "op", op, "retry_after", wait)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	err = fn()
	if bot.IsTooManyRequestsError(err) {
		metrics.RateLimited.Inc()
		return oops.With("op", op).Wrapf(sharedErrors.ErrUpstreamRateLimited, "%v", err)
	}
	return err
}

func membershipFromChatMember(member *models.ChatMember) membershipDomain.Membership {
	if member == nil {
		return membershipDomain.Membership{Status: membershipDomain.StatusLeft}
	}
	switch member.Type {
	case models.ChatMemberTypeOwner:
		return membershipDomain.Membership{Status: membershipDomain.StatusOwner}
	case models.ChatMemberTypeAdministrator:
		return membershipDomain.Membership{Status: membershipDomain.StatusAdministrator}
	case models.ChatMemberTypeMember:
		return membershipDomain.Membership{Status: membershipDomain.StatusMember}
	case models.ChatMemberTypeRestricted:
		isMember := member.Restricted != nil && member.Restricted.IsMember
		return membershipDomain.Membership{Status: membershipDomain.StatusRestricted, IsMember: isMember}
	case models.ChatMemberTypeBanned:
		return membershipDomain.Membership{Status: membershipDomain.StatusKicked}
	default:
		return membershipDomain.Membership{Status: membershipDomain.StatusLeft}
	}
}
