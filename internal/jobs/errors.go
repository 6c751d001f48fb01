package jobs

import "errors"

// Repository errors.
var (
	ErrJobNotFound   = errors.New("job not found")
	ErrNoPendingJobs = errors.New("no pending jobs")
)

// Service errors.
var (
	ErrInvalidJobKind = errors.New("invalid job kind")
	ErrInvalidPayload = errors.New("invalid job payload")
)
