package service

import (
	"context"

	stateDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service tracks known users and bans
type Service struct {
	state   *stateService.Service
	adminID int64
}

// New creates a new user service
func New(state *stateService.Service, adminID int64) *Service {
	return &Service{
		state:   state,
		adminID: adminID,
	}
}

// Touch records userID as known. It reports whether the user is new.
func (s *Service) Touch(ctx context.Context, userID int64) (bool, error) {
	known := false
	s.state.View(func(st *stateDomain.BotState) {
		_, known = st.Users[userID]
	})
	if known {
		return false, nil
	}

	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		st.Users[userID] = struct{}{}
		return nil
	})
	if err != nil {
		return false, oops.With("user_id", userID).Wrap(err)
	}
	return true, nil
}

// IsAuthorized checks if a user is the administrator
func (s *Service) IsAuthorized(userID int64) bool {
	return s.adminID != 0 && userID == s.adminID
}

func (s *Service) IsBanned(userID int64) bool {
	banned := false
	s.state.View(func(st *stateDomain.BotState) {
		_, banned = st.Banned[userID]
	})
	return banned
}

// Ban adds userID to the ban list. The administrator cannot be banned.
func (s *Service) Ban(ctx context.Context, userID int64) error {
	if s.IsAuthorized(userID) {
		return oops.With("user_id", userID).Wrap(sharedErrors.ErrUnauthorized)
	}
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		st.Banned[userID] = struct{}{}
		return nil
	})
}

// Unban removes userID from the ban list
func (s *Service) Unban(ctx context.Context, userID int64) error {
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		if _, ok := st.Banned[userID]; !ok {
			return oops.With("user_id", userID).Wrap(sharedErrors.ErrNotFound)
		}
		delete(st.Banned, userID)
		return nil
	})
}

// Recipients returns known users that are not banned
func (s *Service) Recipients() []int64 {
	var ids []int64
	s.state.View(func(st *stateDomain.BotState) {
		ids = lo.Filter(lo.Keys(st.Users), func(id int64, _ int) bool {
			_, banned := st.Banned[id]
			return !banned
		})
	})
	return ids
}

// Counts returns the number of known and banned users
func (s *Service) Counts() (users, banned int) {
	s.state.View(func(st *stateDomain.BotState) {
		users = len(st.Users)
		banned = len(st.Banned)
	})
	return users, banned
}
