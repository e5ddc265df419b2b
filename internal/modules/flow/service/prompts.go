package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/domain"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
)

// Prompt is the question asked at step
func Prompt(step domain.Step) string {
	switch step {
	case domain.StepFilterName:
		return "🎬 Send a name for the new filter.\n\nExample: TA HD Anime"
	case domain.StepFilterButtons, domain.StepAddButtons, domain.StepReplaceButtons:
		return "🔗 Send buttons separated by commas.\n\nFormat: `Text = https://link, Other - https://link, [Label]`"
	case domain.StepEditName:
		return "✏️ Send the name of the filter you want to edit."
	case domain.StepDeleteIndices:
		return "🗑️ Send the button numbers to delete.\n\nExample: `1, 3, 5-7`"
	case domain.StepSwapPairs:
		return "🔀 Send the button pairs to swap.\n\nExample: `1-2, 3-5`"
	case domain.StepRenameFrom:
		return "✏️ Send the current name of the filter."
	case domain.StepRenameTo:
		return "✏️ Send the new name of the filter."
	case domain.StepMergeTarget:
		return "🧩 Send the name of the new merged filter."
	case domain.StepMergeSources:
		return "🧩 Send the filters to merge, in order, separated by commas."
	case domain.StepDeleteName:
		return "🗑️ Send the name of the filter to delete."
	case domain.StepBanId:
		return "🚫 Send the user ID to ban."
	case domain.StepUnbanId:
		return "✅ Send the user ID to unban."
	case domain.StepAutoDelete:
		return "⏳ Send the auto-delete time: `30m`, `1h`, `12h`, `24h` or `off`."
	case domain.StepChannelForward:
		return "📢 Forward a message from the channel."
	}
	return "Send /cancel to stop."
}

// ErrorText is the admin-facing description of err
func ErrorText(err error) string {
	switch {
	case errors.Is(err, sharedErrors.ErrDuplicateKeyword):
		return "❌ A filter with this name already exists."
	case errors.Is(err, sharedErrors.ErrNotFound):
		return "❌ Not found."
	case errors.Is(err, sharedErrors.ErrKindConflict):
		return "❌ This action does not fit the filter type."
	case errors.Is(err, sharedErrors.ErrIndexOutOfRange):
		return "❌ Wrong button number."
	case errors.Is(err, sharedErrors.ErrInvalidFormat):
		return "❌ Wrong format."
	case errors.Is(err, sharedErrors.ErrUnauthorized):
		return "❌ Not allowed."
	default:
		return "⚠️ Something went wrong, the change was not saved."
	}
}

// AutoDeleteText describes the auto-delete setting
func AutoDeleteText(d time.Duration) string {
	if d <= 0 {
		return "✅ Auto-delete is off."
	}
	return fmt.Sprintf("✅ Delivered files will be deleted after %s.", FormatDuration(d))
}

// FormatDuration renders d in the largest whole unit of days, hours or minutes
func FormatDuration(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	default:
		return fmt.Sprintf("%dm", d/time.Minute)
	}
}
