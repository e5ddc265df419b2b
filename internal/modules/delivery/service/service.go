package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/delivery/domain"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	settingsService "github.com/reshetovitsme/keyword-share-bot/internal/modules/settings/service"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/reshetovitsme/keyword-share-bot/internal/shared/metrics"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

// ProgressEvery is how many broadcast recipients pass between progress reports
const ProgressEvery = 10

// Messenger copies and removes chat messages
type Messenger interface {
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int, protect bool) (int, error)
	DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) error
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	PinMessage(ctx context.Context, chatID int64, messageID int) error
}

// Progress is called while a broadcast runs
type Progress func(done, total int, report domain.Report)

// Service copies stored channel posts to users. Copies are paced by one
// shared limiter and a failed copy never stops the batch.
type Service struct {
	messenger       Messenger
	settings        *settingsService.Service
	sourceChannelID int64
	limiter         *rate.Limiter
	afterFunc       func(d time.Duration, f func())
}

// New creates a new delivery service sending at most one copy per interval
func New(messenger Messenger, settings *settingsService.Service, sourceChannelID int64, interval time.Duration) *Service {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Service{
		messenger:       messenger,
		settings:        settings,
		sourceChannelID: sourceChannelID,
		limiter:         rate.NewLimiter(limit, 1),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// SendFiles copies refs from the source channel to chatID and schedules
// their removal when auto-delete is on
func (s *Service) SendFiles(ctx context.Context, chatID int64, refs []filterDomain.FileRef) (domain.Report, error) {
	var report domain.Report
	protect := s.settings.Protect()
	sent := make([]int, 0, len(refs))

	for _, ref := range refs {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, oops.With("chat_id", chatID).Wrap(err)
		}
		id, err := s.messenger.CopyMessage(ctx, chatID, s.sourceChannelID, int(ref), protect)
		metrics.Deliveries.WithLabelValues("files", metrics.Result(err)).Inc()
		if err != nil {
			report.Failed++
			slog.Warn("Failed to deliver file", "chat_id", chatID, "file_ref", ref, "error", err)
			continue
		}
		report.Sent++
		sent = append(sent, id)
	}

	if d := s.settings.AutoDelete(); d > 0 && len(sent) > 0 {
		s.scheduleDelete(chatID, sent, d)
	}

	if len(refs) > 0 && report.Sent == 0 {
		return report, oops.With("chat_id", chatID, "failed", report.Failed).Wrap(sharedErrors.ErrDeliveryFailed)
	}

	slog.Info("Files delivered", "chat_id", chatID, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

// scheduleDelete removes ids from chatID after d. Pending removals are lost
// on restart.
func (s *Service) scheduleDelete(chatID int64, ids []int, d time.Duration) {
	slog.Debug("Auto-delete scheduled", "chat_id", chatID, "messages", len(ids), "after", d)
	s.afterFunc(d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.messenger.DeleteMessages(ctx, chatID, ids); err != nil {
			slog.Warn("Auto-delete failed", "chat_id", chatID, "messages", ids, "error", err)
			return
		}
		slog.Debug("Auto-deleted messages", "chat_id", chatID, "messages", len(ids))
	})
}

// Broadcast copies one message to every recipient with content protection
func (s *Service) Broadcast(ctx context.Context, fromChatID int64, messageID int, recipients []int64, progress Progress) (domain.Report, error) {
	var report domain.Report
	total := len(recipients)

	for i, userID := range recipients {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, oops.With("done", i, "total", total).Wrap(err)
		}
		_, err := s.messenger.CopyMessage(ctx, userID, fromChatID, messageID, true)
		metrics.Deliveries.WithLabelValues("broadcast", metrics.Result(err)).Inc()
		if err != nil {
			report.Failed++
			slog.Debug("Broadcast delivery failed", "user_id", userID, "error", err)
		} else {
			report.Sent++
		}

		if progress != nil && (i+1)%ProgressEvery == 0 && i+1 < total {
			progress(i+1, total, report)
		}
	}

	slog.Info("Broadcast finished", "sent", report.Sent, "failed", report.Failed, "total", total)
	return report, nil
}

// Republish posts keyword into the source channel, pins it and copies refs
// after it. A ref that cannot be copied keeps its old value.
func (s *Service) Republish(ctx context.Context, keyword string, refs []filterDomain.FileRef) ([]filterDomain.FileRef, domain.Report, error) {
	var report domain.Report

	postID, err := s.messenger.SendText(ctx, s.sourceChannelID, keyword)
	if err != nil {
		return nil, report, oops.With("keyword", keyword).Wrap(err)
	}
	if err := s.messenger.PinMessage(ctx, s.sourceChannelID, postID); err != nil {
		slog.Warn("Failed to pin keyword post", "keyword", keyword, "post_id", postID, "error", err)
	}

	out := make([]filterDomain.FileRef, len(refs))
	for i, ref := range refs {
		out[i] = ref
		if err := s.limiter.Wait(ctx); err != nil {
			return out, report, oops.With("keyword", keyword).Wrap(err)
		}
		id, err := s.messenger.CopyMessage(ctx, s.sourceChannelID, s.sourceChannelID, int(ref), false)
		metrics.Deliveries.WithLabelValues("republish", metrics.Result(err)).Inc()
		if err != nil {
			report.Failed++
			slog.Warn("Failed to republish file", "keyword", keyword, "file_ref", ref, "error", err)
			continue
		}
		report.Sent++
		out[i] = filterDomain.FileRef(id)
	}

	slog.Info("Filter republished", "keyword", keyword, "post_id", postID, "sent", report.Sent, "failed", report.Failed)
	return out, report, nil
}
