package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	filterService "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/service"
	stateDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	"github.com/reshetovitsme/keyword-share-bot/internal/shared/metrics"
	"github.com/samber/oops"
)

// Notifier posts operator notices to the log channel
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

var (
	errIgnored  = errors.New("post ignored")
	errNoActive = errors.New("no active filter")
)

// Service turns source channel posts into file filters. A single-word text
// post declares a keyword and makes it active; media posts that follow are
// appended to the active keyword.
type Service struct {
	state       *stateService.Service
	notifier    Notifier
	botUsername string
}

// New creates a new intake service
func New(state *stateService.Service, notifier Notifier, botUsername string) *Service {
	return &Service{
		state:       state,
		notifier:    notifier,
		botUsername: botUsername,
	}
}

// DeclaredKeyword returns the keyword a post declares. Only posts made of
// exactly one word declare one.
func DeclaredKeyword(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return "", false
	}
	keyword := domain.NormalizeKeyword(fields[0])
	return keyword, keyword != ""
}

// Active returns the keyword media posts are currently appended to
func (s *Service) Active() (string, bool) {
	var keyword string
	s.state.View(func(st *stateDomain.BotState) {
		keyword = st.LastFilter
	})
	return keyword, keyword != ""
}

// HandleText processes a text post from the source channel
func (s *Service) HandleText(ctx context.Context, postID int, text string) error {
	keyword, ok := DeclaredKeyword(text)
	if !ok {
		return nil
	}

	created := false
	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		if existing, found := st.Filters[keyword]; found {
			if existing.Kind == domain.KindButton {
				return errIgnored
			}
		} else {
			f, err := filterService.CreateIn(st, keyword, domain.KindFile)
			if err != nil {
				return err
			}
			f.SourcePost = postID
			created = true
		}
		st.LastFilter = keyword
		st.LastFilterPost = postID
		return nil
	})

	switch {
	case errors.Is(err, errIgnored):
		slog.Warn("Keyword names a button filter, post ignored", "keyword", keyword, "post_id", postID)
		metrics.Intake.WithLabelValues("ignored").Inc()
		s.notify(ctx, fmt.Sprintf("⚠️ '%s' is a button filter, channel post %d ignored.", keyword, postID))
		return nil
	case err != nil:
		return oops.With("keyword", keyword, "post_id", postID).Wrap(err)
	}

	if created {
		slog.Info("Filter created from channel", "keyword", keyword, "post_id", postID)
		metrics.Intake.WithLabelValues("created").Inc()
		s.notify(ctx, fmt.Sprintf("✅ New filter created!\n🔗 Share link: %s", domain.ShareLink(s.botUsername, keyword)))
		return nil
	}

	slog.Info("Filter activated from channel", "keyword", keyword, "post_id", postID)
	metrics.Intake.WithLabelValues("activated").Inc()
	s.notify(ctx, fmt.Sprintf("⚠️ Filter '%s' is already active.", keyword))
	return nil
}

// HandleMedia appends a media post to the active filter
func (s *Service) HandleMedia(ctx context.Context, postID int) error {
	var keyword string
	stale := false
	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		keyword = st.LastFilter
		if keyword == "" {
			return errNoActive
		}
		f, ok := st.Filters[keyword]
		if !ok || f.Kind != domain.KindFile {
			// the pointer outlived its filter; clearing it must persist
			st.LastFilter = ""
			st.LastFilterPost = 0
			stale = true
			return nil
		}
		f.Files = append(f.Files, domain.FileRef(postID))
		return nil
	})
	if err == nil && stale {
		err = errNoActive
	}

	switch {
	case errors.Is(err, errNoActive):
		slog.Warn("Media post without active filter", "post_id", postID)
		metrics.Intake.WithLabelValues("dropped").Inc()
		s.notify(ctx, "⚠️ No active filter found.")
		return nil
	case err != nil:
		return oops.With("keyword", keyword, "post_id", postID).Wrap(err)
	}

	metrics.Intake.WithLabelValues("file").Inc()
	slog.Debug("File appended", "keyword", keyword, "post_id", postID)
	return nil
}

// HandleEdited handles an edit of a channel post. An edit that removes the
// keyword from the post that declared it retracts that keyword.
func (s *Service) HandleEdited(ctx context.Context, postID int, text string) error {
	var declared string
	s.state.View(func(st *stateDomain.BotState) {
		if st.LastFilterPost == postID && st.LastFilter != "" {
			declared = st.LastFilter
			return
		}
		for _, f := range st.Filters {
			if f.SourcePost == postID {
				declared = f.Keyword
				return
			}
		}
	})
	if declared == "" {
		return nil
	}

	keyword, ok := DeclaredKeyword(text)
	if ok && keyword == declared {
		return nil
	}
	if err := s.HandleDeleted(ctx, postID, declared); err != nil {
		return err
	}
	if ok {
		return s.HandleText(ctx, postID, text)
	}
	return nil
}

// HandleDeleted removes the filter a deleted declaring post named
func (s *Service) HandleDeleted(ctx context.Context, postID int, text string) error {
	keyword, ok := DeclaredKeyword(text)
	if !ok {
		return nil
	}

	deleted, cleared := false, false
	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		wasActive := st.LastFilter == keyword
		if _, found := st.Filters[keyword]; found {
			if err := filterService.DeleteIn(st, keyword); err != nil {
				return err
			}
			deleted = true
		}
		if st.LastFilter == keyword {
			st.LastFilter = ""
			st.LastFilterPost = 0
		}
		cleared = wasActive
		if !deleted && !cleared {
			return errIgnored
		}
		return nil
	})
	if errors.Is(err, errIgnored) {
		return nil
	}
	if err != nil {
		return oops.With("keyword", keyword, "post_id", postID).Wrap(err)
	}

	metrics.Intake.WithLabelValues("retracted").Inc()
	slog.Info("Filter retracted from channel", "keyword", keyword, "post_id", postID, "deleted", deleted, "cleared_active", cleared)
	if deleted {
		s.notify(ctx, fmt.Sprintf("🗑️ Filter '%s' has been deleted.", keyword))
	}
	if cleared {
		s.notify(ctx, "📝 Note: The last active filter has been cleared.")
	}
	return nil
}

func (s *Service) notify(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, text); err != nil {
		slog.Error("Failed to send log channel notice", "error", err)
	}
}
