package service

import (
	"context"
	"slices"
	"time"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	stateDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service is the keyword filter repository. Every mutation is persisted
// before it becomes visible.
type Service struct {
	state *stateService.Service
}

// New creates a new filter service
func New(state *stateService.Service) *Service {
	return &Service{
		state: state,
	}
}

// Get returns a copy of the filter stored under keyword
func (s *Service) Get(keyword string) (*domain.Filter, bool) {
	key := domain.NormalizeKeyword(keyword)
	var f *domain.Filter
	s.state.View(func(st *stateDomain.BotState) {
		f = st.Filters[key].Clone()
	})
	return f, f != nil
}

// Exists reports whether keyword is stored
func (s *Service) Exists(keyword string) bool {
	_, ok := s.Get(keyword)
	return ok
}

// Keywords lists stored keywords in sorted order
func (s *Service) Keywords() []string {
	var keys []string
	s.state.View(func(st *stateDomain.BotState) {
		keys = lo.Keys(st.Filters)
	})
	slices.Sort(keys)
	return keys
}

// All returns copies of every filter sorted by keyword
func (s *Service) All() []*domain.Filter {
	var filters []*domain.Filter
	s.state.View(func(st *stateDomain.BotState) {
		filters = lo.MapToSlice(st.Filters, func(_ string, f *domain.Filter) *domain.Filter {
			return f.Clone()
		})
	})
	slices.SortFunc(filters, func(a, b *domain.Filter) int {
		if a.Keyword < b.Keyword {
			return -1
		}
		if a.Keyword > b.Keyword {
			return 1
		}
		return 0
	})
	return filters
}

// ByShortID resolves the short id carried in callback data
func (s *Service) ByShortID(id string) (*domain.Filter, bool) {
	var f *domain.Filter
	s.state.View(func(st *stateDomain.BotState) {
		for _, candidate := range st.Filters {
			if candidate.ShortID() == id {
				f = candidate.Clone()
				return
			}
		}
	})
	return f, f != nil
}

func (s *Service) Create(ctx context.Context, keyword string, kind domain.Kind) (*domain.Filter, error) {
	var created *domain.Filter
	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, err := CreateIn(st, keyword, kind)
		if err != nil {
			return err
		}
		created = f.Clone()
		return nil
	})
	return created, err
}

func (s *Service) Rename(ctx context.Context, oldKeyword, newKeyword string) error {
	from := domain.NormalizeKeyword(oldKeyword)
	to := domain.NormalizeKeyword(newKeyword)
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, ok := st.Filters[from]
		if !ok {
			return oops.With("keyword", from).Wrap(sharedErrors.ErrNotFound)
		}
		if to == "" {
			return oops.With("keyword", newKeyword).Wrap(sharedErrors.ErrInvalidFormat)
		}
		if _, exists := st.Filters[to]; exists {
			return oops.With("keyword", to).Wrap(sharedErrors.ErrDuplicateKeyword)
		}
		delete(st.Filters, from)
		f.Keyword = to
		st.Filters[to] = f
		if st.LastFilter == from {
			st.LastFilter = to
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, keyword string) error {
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		return DeleteIn(st, keyword)
	})
}

func (s *Service) AppendFile(ctx context.Context, keyword string, ref domain.FileRef) error {
	key := domain.NormalizeKeyword(keyword)
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, err := lookup(st, key, domain.KindFile)
		if err != nil {
			return err
		}
		f.Files = append(f.Files, ref)
		return nil
	})
}

func (s *Service) AddButtons(ctx context.Context, keyword string, buttons []domain.Button) error {
	key := domain.NormalizeKeyword(keyword)
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, err := lookup(st, key, domain.KindButton)
		if err != nil {
			return err
		}
		f.Buttons = append(f.Buttons, buttons...)
		return nil
	})
}

// ReplaceButtons drops every button of the filter and stores buttons instead
func (s *Service) ReplaceButtons(ctx context.Context, keyword string, buttons []domain.Button) error {
	key := domain.NormalizeKeyword(keyword)
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, err := lookup(st, key, domain.KindButton)
		if err != nil {
			return err
		}
		f.Buttons = append([]domain.Button(nil), buttons...)
		return nil
	})
}

// DeleteButtons removes the buttons at the given 1-based positions.
// Nothing is removed if any position is out of range.
func (s *Service) DeleteButtons(ctx context.Context, keyword string, indices []int) (int, error) {
	key := domain.NormalizeKeyword(keyword)
	deleted := 0
	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, err := lookup(st, key, domain.KindButton)
		if err != nil {
			return err
		}
		buttons, n, err := DeleteAt(f.Buttons, indices)
		if err != nil {
			return oops.With("keyword", key).Wrap(err)
		}
		f.Buttons = buttons
		deleted = n
		return nil
	})
	return deleted, err
}

// SwapButtons exchanges buttons pairwise, in order. All pairs are checked
// before any swap is applied.
func (s *Service) SwapButtons(ctx context.Context, keyword string, pairs [][2]int) error {
	key := domain.NormalizeKeyword(keyword)
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, err := lookup(st, key, domain.KindButton)
		if err != nil {
			return err
		}
		if err := SwapAt(f.Buttons, pairs); err != nil {
			return oops.With("keyword", key).Wrap(err)
		}
		return nil
	})
}

// Merge concatenates the files of sources, in order, into a new file filter
// named target and removes the sources. Nothing changes if a source is
// missing or is not a file filter.
func (s *Service) Merge(ctx context.Context, target string, sources []string) (*domain.Filter, error) {
	to := domain.NormalizeKeyword(target)
	from := lo.Uniq(lo.FilterMap(sources, func(src string, _ int) (string, bool) {
		key := domain.NormalizeKeyword(src)
		return key, key != ""
	}))

	var merged *domain.Filter
	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		if to == "" || len(from) == 0 {
			return oops.With("target", target, "sources", sources).Wrap(sharedErrors.ErrInvalidFormat)
		}
		if _, exists := st.Filters[to]; exists {
			return oops.With("keyword", to).Wrap(sharedErrors.ErrDuplicateKeyword)
		}

		var files []domain.FileRef
		for _, key := range from {
			f, err := lookup(st, key, domain.KindFile)
			if err != nil {
				return err
			}
			files = append(files, f.Files...)
		}

		for _, key := range from {
			if err := DeleteIn(st, key); err != nil {
				return err
			}
		}

		f, err := CreateIn(st, to, domain.KindFile)
		if err != nil {
			return err
		}
		f.Files = files
		merged = f.Clone()
		return nil
	})
	return merged, err
}

// SetFiles replaces the file list of a file filter
func (s *Service) SetFiles(ctx context.Context, keyword string, refs []domain.FileRef) error {
	key := domain.NormalizeKeyword(keyword)
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		f, err := lookup(st, key, domain.KindFile)
		if err != nil {
			return err
		}
		f.Files = append([]domain.FileRef(nil), refs...)
		return nil
	})
}

// CreateIn adds a new empty filter to st
func CreateIn(st *stateDomain.BotState, keyword string, kind domain.Kind) (*domain.Filter, error) {
	key := domain.NormalizeKeyword(keyword)
	if key == "" || !kind.IsValid() {
		return nil, oops.With("keyword", keyword, "kind", kind).Wrap(sharedErrors.ErrInvalidFormat)
	}
	if _, exists := st.Filters[key]; exists {
		return nil, oops.With("keyword", key).Wrap(sharedErrors.ErrDuplicateKeyword)
	}
	f := &domain.Filter{
		Keyword:   key,
		Kind:      kind,
		Buttons:   []domain.Button{},
		Files:     []domain.FileRef{},
		CreatedAt: time.Now().UTC(),
	}
	st.Filters[key] = f
	return f, nil
}

// DeleteIn removes keyword from st and clears the active pointer if it matched
func DeleteIn(st *stateDomain.BotState, keyword string) error {
	key := domain.NormalizeKeyword(keyword)
	if _, ok := st.Filters[key]; !ok {
		return oops.With("keyword", key).Wrap(sharedErrors.ErrNotFound)
	}
	delete(st.Filters, key)
	if st.LastFilter == key {
		st.LastFilter = ""
		st.LastFilterPost = 0
	}
	return nil
}

func lookup(st *stateDomain.BotState, key string, kind domain.Kind) (*domain.Filter, error) {
	f, ok := st.Filters[key]
	if !ok {
		return nil, oops.With("keyword", key).Wrap(sharedErrors.ErrNotFound)
	}
	if f.Kind != kind {
		return nil, oops.With("keyword", key, "kind", f.Kind, "wanted", kind).Wrap(sharedErrors.ErrKindConflict)
	}
	return f, nil
}
