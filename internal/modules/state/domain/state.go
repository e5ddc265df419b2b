package domain

import (
	"slices"
	"time"

	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	flowDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/domain"
	"github.com/samber/lo"
)

// BotState is the whole working set of the bot. It is persisted as one document.
type BotState struct {
	Filters        map[string]*filterDomain.Filter
	Users          map[int64]struct{}
	Banned         map[int64]struct{}
	LastFilter     string
	LastFilterPost int
	Protect        bool
	AutoDelete     time.Duration
	Sessions       map[int64]*flowDomain.UserState
}

// Document is the persisted shape of BotState. Maps keyed by free text or
// numbers are flattened to lists so every backend can store them.
type Document struct {
	Filters           []*filterDomain.Filter  `json:"filters" bson:"filters" firestore:"filters"`
	Users             []int64                 `json:"users" bson:"users" firestore:"users"`
	Banned            []int64                 `json:"banned" bson:"banned" firestore:"banned"`
	LastFilter        string                  `json:"last_filter" bson:"last_filter" firestore:"last_filter"`
	LastFilterPost    int                     `json:"last_filter_post" bson:"last_filter_post" firestore:"last_filter_post"`
	Protect           bool                    `json:"protect" bson:"protect" firestore:"protect"`
	AutoDeleteSeconds int64                   `json:"auto_delete_seconds" bson:"auto_delete_seconds" firestore:"auto_delete_seconds"`
	Sessions          []*flowDomain.UserState `json:"sessions" bson:"sessions" firestore:"sessions"`
	UpdatedAt         time.Time               `json:"updated_at" bson:"updated_at" firestore:"updated_at"`
}

func New() *BotState {
	return &BotState{
		Filters:  make(map[string]*filterDomain.Filter),
		Users:    make(map[int64]struct{}),
		Banned:   make(map[int64]struct{}),
		Sessions: make(map[int64]*flowDomain.UserState),
	}
}

// Clone deep-copies the state so a mutation can be staged before it is saved
func (s *BotState) Clone() *BotState {
	c := &BotState{
		Filters:        make(map[string]*filterDomain.Filter, len(s.Filters)),
		Users:          make(map[int64]struct{}, len(s.Users)),
		Banned:         make(map[int64]struct{}, len(s.Banned)),
		LastFilter:     s.LastFilter,
		LastFilterPost: s.LastFilterPost,
		Protect:        s.Protect,
		AutoDelete:     s.AutoDelete,
		Sessions:       make(map[int64]*flowDomain.UserState, len(s.Sessions)),
	}
	for k, f := range s.Filters {
		c.Filters[k] = f.Clone()
	}
	for id := range s.Users {
		c.Users[id] = struct{}{}
	}
	for id := range s.Banned {
		c.Banned[id] = struct{}{}
	}
	for id, st := range s.Sessions {
		c.Sessions[id] = st.Clone()
	}
	return c
}

// ToDocument flattens the state for persistence. Output order is stable.
func (s *BotState) ToDocument() *Document {
	keys := lo.Keys(s.Filters)
	slices.Sort(keys)
	users := lo.Keys(s.Users)
	slices.Sort(users)
	banned := lo.Keys(s.Banned)
	slices.Sort(banned)
	sessionIDs := lo.Keys(s.Sessions)
	slices.Sort(sessionIDs)

	return &Document{
		Filters: lo.Map(keys, func(k string, _ int) *filterDomain.Filter {
			return s.Filters[k].Clone()
		}),
		Users:             users,
		Banned:            banned,
		LastFilter:        s.LastFilter,
		LastFilterPost:    s.LastFilterPost,
		Protect:           s.Protect,
		AutoDeleteSeconds: int64(s.AutoDelete / time.Second),
		Sessions: lo.Map(sessionIDs, func(id int64, _ int) *flowDomain.UserState {
			st := s.Sessions[id].Clone()
			st.UserID = id
			return st
		}),
		UpdatedAt: time.Now().UTC(),
	}
}

// FromDocument rebuilds state from a stored document. Missing fields fall
// back to their zero values; filters without a kind are treated as file
// filters unless they carry buttons.
func FromDocument(doc *Document) *BotState {
	s := New()
	if doc == nil {
		return s
	}
	for _, f := range doc.Filters {
		if f == nil {
			continue
		}
		key := filterDomain.NormalizeKeyword(f.Keyword)
		if key == "" {
			continue
		}
		c := f.Clone()
		c.Keyword = key
		if !c.Kind.IsValid() {
			c.Kind = filterDomain.KindFile
			if len(c.Buttons) > 0 {
				c.Kind = filterDomain.KindButton
			}
		}
		s.Filters[key] = c
	}
	for _, id := range doc.Users {
		s.Users[id] = struct{}{}
	}
	for _, id := range doc.Banned {
		s.Banned[id] = struct{}{}
	}
	s.LastFilter = doc.LastFilter
	s.LastFilterPost = doc.LastFilterPost
	s.Protect = doc.Protect
	s.AutoDelete = time.Duration(doc.AutoDeleteSeconds) * time.Second
	for _, st := range doc.Sessions {
		if st == nil || !st.Step.IsValid() {
			continue
		}
		s.Sessions[st.UserID] = st.Clone()
	}
	return s
}
