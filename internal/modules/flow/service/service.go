package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	deliveryDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/delivery/domain"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	filterService "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/service"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/domain"
	settingsService "github.com/reshetovitsme/keyword-share-bot/internal/modules/settings/service"
	stateDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	userService "github.com/reshetovitsme/keyword-share-bot/internal/modules/user/service"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// Input is one admin message answering the current prompt
type Input struct {
	Text             string
	ForwardChatID    int64
	ForwardChatTitle string
}

// View asks the transport to render a filter after the reply text
type View struct {
	Keyword string
	Edit    bool
	Page    int
}

type Reply struct {
	Text string
	View *View
}

// Republisher posts merged files back into the source channel and returns
// their new references
type Republisher interface {
	Republish(ctx context.Context, keyword string, refs []filterDomain.FileRef) ([]filterDomain.FileRef, deliveryDomain.Report, error)
}

// Engine drives the per-user admin conversations. Each user has at most one
// flow; starting another replaces it.
type Engine struct {
	state       *stateService.Service
	filters     *filterService.Service
	users       *userService.Service
	settings    *settingsService.Service
	republisher Republisher
}

// New creates a new flow engine. republisher may be nil.
func New(
	state *stateService.Service,
	filters *filterService.Service,
	users *userService.Service,
	settings *settingsService.Service,
	republisher Republisher,
) *Engine {
	return &Engine{
		state:       state,
		filters:     filters,
		users:       users,
		settings:    settings,
		republisher: republisher,
	}
}

// Current returns the flow userID is in
func (e *Engine) Current(userID int64) (*domain.UserState, bool) {
	var session *domain.UserState
	e.state.View(func(st *stateDomain.BotState) {
		session = st.Sessions[userID].Clone()
	})
	return session, session != nil
}

// Start puts userID at step and returns its prompt. Any previous flow is
// dropped.
func (e *Engine) Start(ctx context.Context, userID int64, step domain.Step, keyword string, page int) (Reply, error) {
	if !step.IsValid() {
		return Reply{}, oops.With("step", step).Wrap(sharedErrors.ErrInvalidFormat)
	}
	session := &domain.UserState{
		UserID:  userID,
		Step:    step,
		Keyword: filterDomain.NormalizeKeyword(keyword),
		Page:    page,
	}
	if err := e.save(ctx, session); err != nil {
		return Reply{}, err
	}
	slog.Debug("Flow started", "user_id", userID, "step", step, "keyword", session.Keyword)
	return Reply{Text: Prompt(step)}, nil
}

// Cancel drops the flow of userID and reports whether there was one
func (e *Engine) Cancel(ctx context.Context, userID int64) (bool, error) {
	if _, ok := e.Current(userID); !ok {
		return false, nil
	}
	return true, e.clear(ctx, userID)
}

// Handle feeds in to the flow of userID. The bool is false when the user
// has no flow. Input that fails validation re-prompts and keeps the step.
func (e *Engine) Handle(ctx context.Context, userID int64, in Input) (Reply, bool, error) {
	session, ok := e.Current(userID)
	if !ok {
		return Reply{}, false, nil
	}

	if strings.EqualFold(strings.TrimSpace(in.Text), "/cancel") {
		if err := e.clear(ctx, userID); err != nil {
			return Reply{}, true, err
		}
		return Reply{Text: "❎ Cancelled."}, true, nil
	}

	next, reply, err := e.step(ctx, session, in)
	if err != nil {
		if isInputError(err) {
			slog.Debug("Flow input rejected", "user_id", userID, "step", session.Step, "error", err)
			return Reply{Text: ErrorText(err) + "\n\n" + Prompt(session.Step)}, true, nil
		}
		return Reply{}, true, oops.With("user_id", userID, "step", session.Step).Wrap(err)
	}

	if next != nil {
		next.UserID = userID
		if err := e.save(ctx, next); err != nil {
			return Reply{}, true, err
		}
		reply.Text = strings.TrimSpace(reply.Text + "\n\n" + Prompt(next.Step))
		return reply, true, nil
	}

	if err := e.clear(ctx, userID); err != nil {
		return Reply{}, true, err
	}
	return reply, true, nil
}

// step applies in to session. A nil next state completes the flow.
func (e *Engine) step(ctx context.Context, session *domain.UserState, in Input) (*domain.UserState, Reply, error) {
	text := strings.TrimSpace(in.Text)
	keyword := session.Keyword

	switch session.Step {
	case domain.StepFilterName:
		f, err := e.filters.Create(ctx, text, filterDomain.KindButton)
		if err != nil {
			return nil, Reply{}, err
		}
		return &domain.UserState{Step: domain.StepFilterButtons, Keyword: f.Keyword},
			Reply{Text: fmt.Sprintf("✅ Filter '%s' created!", f.Keyword)}, nil

	case domain.StepFilterButtons, domain.StepAddButtons:
		buttons, err := ParseButtons(text)
		if err != nil {
			return nil, Reply{}, err
		}
		if err := e.filters.AddButtons(ctx, keyword, buttons); err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{
			Text: fmt.Sprintf("✅ %d button(s) added to '%s'.", len(buttons), keyword),
			View: &View{Keyword: keyword, Edit: session.Step == domain.StepAddButtons, Page: session.Page},
		}, nil

	case domain.StepReplaceButtons:
		buttons, err := ParseButtons(text)
		if err != nil {
			return nil, Reply{}, err
		}
		if err := e.filters.ReplaceButtons(ctx, keyword, buttons); err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{
			Text: fmt.Sprintf("✅ Buttons of '%s' replaced.", keyword),
			View: &View{Keyword: keyword, Edit: true},
		}, nil

	case domain.StepEditName:
		f, ok := e.filters.Get(text)
		if !ok {
			return nil, Reply{}, oops.With("keyword", text).Wrap(sharedErrors.ErrNotFound)
		}
		return nil, Reply{
			Text: fmt.Sprintf("✏️ Choose what to edit in '%s'.", f.Keyword),
			View: &View{Keyword: f.Keyword, Edit: true},
		}, nil

	case domain.StepDeleteIndices:
		indices, err := ParseIndices(text)
		if err != nil {
			return nil, Reply{}, err
		}
		n, err := e.filters.DeleteButtons(ctx, keyword, indices)
		if err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{
			Text: fmt.Sprintf("✅ %d button(s) deleted.", n),
			View: &View{Keyword: keyword, Edit: true, Page: session.Page},
		}, nil

	case domain.StepSwapPairs:
		pairs, err := ParseSwapPairs(text)
		if err != nil {
			return nil, Reply{}, err
		}
		if err := e.filters.SwapButtons(ctx, keyword, pairs); err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{
			Text: "✅ Button order updated.",
			View: &View{Keyword: keyword, Edit: true, Page: session.Page},
		}, nil

	case domain.StepRenameFrom:
		f, ok := e.filters.Get(text)
		if !ok {
			return nil, Reply{}, oops.With("keyword", text).Wrap(sharedErrors.ErrNotFound)
		}
		return &domain.UserState{Step: domain.StepRenameTo, Keyword: f.Keyword}, Reply{}, nil

	case domain.StepRenameTo:
		if err := e.filters.Rename(ctx, keyword, text); err != nil {
			return nil, Reply{}, err
		}
		renamed := filterDomain.NormalizeKeyword(text)
		return nil, Reply{Text: fmt.Sprintf("✅ Filter '%s' renamed to '%s'.", keyword, renamed)}, nil

	case domain.StepMergeTarget:
		target := filterDomain.NormalizeKeyword(text)
		if target == "" {
			return nil, Reply{}, oops.With("input", text).Wrap(sharedErrors.ErrInvalidFormat)
		}
		if e.filters.Exists(target) {
			return nil, Reply{}, oops.With("keyword", target).Wrap(sharedErrors.ErrDuplicateKeyword)
		}
		return &domain.UserState{Step: domain.StepMergeSources, Target: target}, Reply{}, nil

	case domain.StepMergeSources:
		sources, err := ParseKeywords(text)
		if err != nil {
			return nil, Reply{}, err
		}
		merged, err := e.filters.Merge(ctx, session.Target, sources)
		if err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{Text: e.republish(ctx, merged, sources)}, nil

	case domain.StepDeleteName:
		target := filterDomain.NormalizeKeyword(text)
		if err := e.filters.Delete(ctx, target); err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{Text: fmt.Sprintf("✅ Filter '%s' deleted.", target)}, nil

	case domain.StepBanId:
		id, err := ParseUserID(text)
		if err != nil {
			return nil, Reply{}, err
		}
		if err := e.users.Ban(ctx, id); err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{Text: fmt.Sprintf("🚫 User %d has been banned.", id)}, nil

	case domain.StepUnbanId:
		id, err := ParseUserID(text)
		if err != nil {
			return nil, Reply{}, err
		}
		if err := e.users.Unban(ctx, id); err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{Text: fmt.Sprintf("✅ User %d has been unbanned.", id)}, nil

	case domain.StepAutoDelete:
		d, err := ParseAutoDelete(text)
		if err != nil {
			return nil, Reply{}, err
		}
		if err := e.settings.SetAutoDelete(ctx, d); err != nil {
			return nil, Reply{}, err
		}
		return nil, Reply{Text: AutoDeleteText(d)}, nil

	case domain.StepChannelForward:
		if in.ForwardChatID == 0 {
			return nil, Reply{}, oops.With("input", text).Wrap(sharedErrors.ErrInvalidFormat)
		}
		return nil, Reply{Text: fmt.Sprintf("📢 %s\nChannel ID: %d", in.ForwardChatTitle, in.ForwardChatID)}, nil
	}

	return nil, Reply{}, oops.With("step", session.Step).Errorf("unknown flow step")
}

func (e *Engine) republish(ctx context.Context, merged *filterDomain.Filter, sources []string) string {
	summary := fmt.Sprintf("✅ Merged %s into '%s' (%s files).",
		strings.Join(sources, ", "), merged.Keyword, humanize.Comma(int64(len(merged.Files))))
	if e.republisher == nil || len(merged.Files) == 0 {
		return summary
	}

	refs, report, err := e.republisher.Republish(ctx, merged.Keyword, merged.Files)
	if err != nil {
		slog.Error("Failed to republish merged filter", "keyword", merged.Keyword, "error", err)
		return summary + "\n⚠️ Republishing to the channel failed, the original posts are kept."
	}
	if err := e.filters.SetFiles(ctx, merged.Keyword, refs); err != nil {
		slog.Error("Failed to store republished files", "keyword", merged.Keyword, "error", err)
		return summary + "\n⚠️ Republished, but the new posts could not be saved."
	}
	return fmt.Sprintf("%s\n📌 Republished: %s.", summary, report)
}

func (e *Engine) save(ctx context.Context, session *domain.UserState) error {
	return e.state.Update(ctx, func(st *stateDomain.BotState) error {
		st.Sessions[session.UserID] = session
		return nil
	})
}

func (e *Engine) clear(ctx context.Context, userID int64) error {
	return e.state.Update(ctx, func(st *stateDomain.BotState) error {
		delete(st.Sessions, userID)
		return nil
	})
}

func isInputError(err error) bool {
	for _, target := range []error{
		sharedErrors.ErrInvalidFormat,
		sharedErrors.ErrIndexOutOfRange,
		sharedErrors.ErrNotFound,
		sharedErrors.ErrDuplicateKeyword,
		sharedErrors.ErrKindConflict,
		sharedErrors.ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
