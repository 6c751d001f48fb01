// Package notifications provides channel registry management and fan-out
// message dispatch across configured channels.
package notifications

import (
	"context"
	"errors"

	"github.com/openduty/console/internal/domain"
)

// ErrSkipChannel is returned by a Sender when the channel should produce no
// result at all: neither a success nor a failure tag.
var ErrSkipChannel = errors.New("channel skipped")

// Message is the content of one fan-out dispatch.
type Message struct {
	Incident *domain.Incident
	Subject  string
	Body     string
	// Target is the runbook step target. The email sender uses it as the
	// recipient when it looks like an email address.
	Target string
}

// Result is the outcome of one channel's delivery attempt.
type Result struct {
	ChannelName string
	Tag         string
	Err         error
}

// Sender delivers a message through one channel type.
type Sender interface {
	Type() domain.ChannelType

	// SuccessTag is the result tag recorded when Send returns nil.
	SuccessTag() string

	// Send attempts delivery through the given channel. Returning
	// ErrSkipChannel drops the channel from the result list entirely;
	// any other error becomes the channel's failure tag.
	Send(ctx context.Context, channel domain.NotificationChannel, msg Message) error
}
