package cms

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lifeoc/event-relay/app/event"
)

const (
	DefaultRetryDelay    = 1 * time.Second
	DefaultMaxRetryDelay = 30 * time.Second
)

var _ Publisher = (*Retrying)(nil)

// Retrying retries transient publish failures with exponential backoff.
// Rejections other than 429 and 5xx are returned immediately.
type Retrying struct {
	next     Publisher
	attempts int
	initial  time.Duration
	max      time.Duration
}

func NewRetrying(next Publisher, attempts int, initial, max time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if initial <= 0 {
		initial = DefaultRetryDelay
	}
	if max < initial {
		max = initial
	}
	return &Retrying{
		next:     next,
		attempts: attempts,
		initial:  initial,
		max:      max,
	}
}

func (r *Retrying) Publish(ctx context.Context, e event.Event) error {
	delay := r.initial

	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return err
			}

			delay *= 2
			if delay > r.max {
				delay = r.max
			}
		}

		err = r.next.Publish(ctx, e)
		if err == nil {
			return nil
		}

		if attempt == r.attempts || !retryable(err) {
			return err
		}

		slog.Warn("Publish retry scheduled",
			"image", e.Image,
			"attempt", attempt,
			"max_attempts", r.attempts,
			"delay", delay.String(),
			"error", err)
	}

	return err
}

func retryable(err error) bool {
	var publishErr *PublishError
	if errors.As(err, &publishErr) {
		return publishErr.Retryable()
	}
	return false
}
