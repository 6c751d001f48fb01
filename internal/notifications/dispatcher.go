package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openduty/console/internal/domain"
)

// Dispatcher broadcasts a message across notification channels with
// independent per-channel outcomes. One channel's failure never aborts or
// delays another's attempt, and no error ever escapes a broadcast.
type Dispatcher struct {
	senders map[domain.ChannelType]Sender
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(senders ...Sender) *Dispatcher {
	senderMap := make(map[domain.ChannelType]Sender)
	for _, s := range senders {
		senderMap[s.Type()] = s
	}
	return &Dispatcher{senders: senderMap}
}

// Broadcast attempts delivery on each channel in order and returns the
// per-channel results in the same order. Disabled channels and channel types
// without a sender are skipped without a result.
func (d *Dispatcher) Broadcast(ctx context.Context, channels []domain.NotificationChannel, msg Message) []Result {
	results := make([]Result, 0, len(channels))

	for _, ch := range channels {
		if !ch.Enabled {
			continue
		}

		sender, ok := d.senders[ch.Type]
		if !ok {
			continue
		}

		start := time.Now()
		err := sender.Send(ctx, ch, msg)
		recordNotificationDuration(string(ch.Type), time.Since(start))

		switch {
		case err == nil:
			recordNotificationSent(string(ch.Type), "success")
			results = append(results, Result{ChannelName: ch.Name, Tag: sender.SuccessTag()})
		case errors.Is(err, ErrSkipChannel):
			recordNotificationSent(string(ch.Type), "skipped")
		default:
			recordNotificationSent(string(ch.Type), "failed")
			results = append(results, Result{
				ChannelName: ch.Name,
				Tag:         fmt.Sprintf("%s failed", ch.Name),
				Err:         err,
			})
		}
	}

	return results
}

// Tags returns the ordered result tags of a broadcast.
func Tags(results []Result) []string {
	tags := make([]string, 0, len(results))
	for _, r := range results {
		tags = append(tags, r.Tag)
	}
	return tags
}
