package service

import (
	"slices"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DeleteAt returns buttons without the 1-based positions in indices.
// Positions are removed highest first so earlier removals never shift the
// ones still pending. Duplicate positions count once.
func DeleteAt(buttons []domain.Button, indices []int) ([]domain.Button, int, error) {
	positions := lo.Uniq(indices)
	for _, idx := range positions {
		if idx < 1 || idx > len(buttons) {
			return nil, 0, oops.With("index", idx, "len", len(buttons)).Wrap(sharedErrors.ErrIndexOutOfRange)
		}
	}

	slices.Sort(positions)
	slices.Reverse(positions)

	out := append([]domain.Button(nil), buttons...)
	for _, idx := range positions {
		out = slices.Delete(out, idx-1, idx)
	}
	return out, len(positions), nil
}

// SwapAt swaps 1-based pairs in place, in order, after checking every pair
func SwapAt(buttons []domain.Button, pairs [][2]int) error {
	for _, p := range pairs {
		for _, idx := range p {
			if idx < 1 || idx > len(buttons) {
				return oops.With("index", idx, "len", len(buttons)).Wrap(sharedErrors.ErrIndexOutOfRange)
			}
		}
	}
	for _, p := range pairs {
		i, j := p[0]-1, p[1]-1
		buttons[i], buttons[j] = buttons[j], buttons[i]
	}
	return nil
}
