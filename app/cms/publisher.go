package cms

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lifeoc/event-relay/app/event"
)

// Publisher creates a single event in a CMS. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// PublishError is returned when the CMS did not accept an event. StatusCode
// is zero when no response was received.
type PublishError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("The API returned an error: %s (status code: %d)", e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("The API returned an error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("The API returned an error: %s", e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether the CMS answered with a non-2xx status, as
// opposed to a transport failure.
func (e *PublishError) IsRejection() bool {
	return e.StatusCode != 0
}

// Retryable reports whether trying again could succeed: transport failures,
// throttling and server errors.
func (e *PublishError) Retryable() bool {
	if !e.IsRejection() {
		return !errors.Is(e.Err, context.Canceled)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// StatusCode extracts the HTTP status from a publish failure, or 0.
func StatusCode(err error) int {
	var publishErr *PublishError
	if errors.As(err, &publishErr) {
		return publishErr.StatusCode
	}
	return 0
}
