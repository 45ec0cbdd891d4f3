package event

import (
	"time"
)

// Event is an upcoming gathering announced by a single flyer image.
type Event struct {
	// Title doubles as the image reference; the email carries no other label.
	Title string `json:"title"`

	// StartDate always falls on the next Sunday relative to construction.
	StartDate time.Time `json:"start_date"`

	Image string `json:"image"`
}

func New(image string) Event {
	return NewAt(image, time.Now())
}

func NewAt(image string, now time.Time) Event {
	return Event{
		Title:     image,
		StartDate: NextSunday(now),
		Image:     image,
	}
}

// NextSunday returns now moved forward 0 to 6 calendar days to the first
// Sunday in now's location, keeping the wall-clock time of day truncated to
// whole seconds. The bound counts calendar days, so across a DST change the
// elapsed duration can exceed 6*24h.
func NextSunday(now time.Time) time.Time {
	now = now.Round(0).Truncate(time.Second)

	for offset := 0; offset < 7; offset++ {
		day := now.AddDate(0, 0, offset)
		if day.Weekday() == time.Sunday {
			return day
		}
	}

	// unreachable: any seven consecutive days contain a Sunday
	return now
}
