// Package errors holds the sentinel errors shared across modules.
// Callers wrap them with oops for context and match them with errors.Is.
package errors

import "errors"

var (
	ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrMissingAdmin    = errors.New("ADMIN_ID environment variable is required")
	ErrUnauthorized    = errors.New("unauthorized user")

	ErrNotFound         = errors.New("not found")
	ErrDuplicateKeyword = errors.New("keyword already exists")
	ErrKindConflict     = errors.New("operation does not match filter kind")
	ErrIndexOutOfRange  = errors.New("button index out of range")
	ErrInvalidFormat    = errors.New("invalid format")

	ErrMembershipCheckFailed = errors.New("membership check failed")
	ErrUpstreamRateLimited   = errors.New("upstream rate limited")
	ErrDeliveryFailed        = errors.New("delivery failed")
)
