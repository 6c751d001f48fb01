package notifications

import "errors"

// Repository errors.
var (
	ErrChannelNotFound = errors.New("notification channel not found")
)

// Service errors.
var (
	ErrInvalidChannelType = errors.New("invalid channel type")
)
