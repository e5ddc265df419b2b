package service

import (
	"context"
	"time"

	stateDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// Service holds the global delivery settings
type Service struct {
	state *stateService.Service
}

func New(state *stateService.Service) *Service {
	return &Service{state: state}
}

// Protect reports whether delivered content is protected from forwarding
func (s *Service) Protect() bool {
	var protect bool
	s.state.View(func(st *stateDomain.BotState) {
		protect = st.Protect
	})
	return protect
}

// ToggleProtect flips content protection and returns the new value
func (s *Service) ToggleProtect(ctx context.Context) (bool, error) {
	var protect bool
	err := s.state.Update(ctx, func(st *stateDomain.BotState) error {
		st.Protect = !st.Protect
		protect = st.Protect
		return nil
	})
	return protect, err
}

// AutoDelete returns how long delivered content is kept. Zero means forever.
func (s *Service) AutoDelete() time.Duration {
	var d time.Duration
	s.state.View(func(st *stateDomain.BotState) {
		d = st.AutoDelete
	})
	return d
}

func (s *Service) SetAutoDelete(ctx context.Context, d time.Duration) error {
	if d < 0 {
		return oops.With("duration", d).Wrap(sharedErrors.ErrInvalidFormat)
	}
	return s.state.Update(ctx, func(st *stateDomain.BotState) error {
		st.AutoDelete = d
		return nil
	})
}
