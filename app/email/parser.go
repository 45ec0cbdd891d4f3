package email

import (
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lifeoc/event-relay/app/event"
)

type Option func(*Parser)

// WithClock replaces the wall clock used to date events.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

type Parser struct {
	now func() time.Time
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run returns one event per <img src> in document order. Malformed markup
// is parsed best-effort and never produces an error.
func (p *Parser) Run(html string) []event.Event {
	events := make([]event.Event, 0)

	if html == "" {
		return events
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// only reachable on reader failure, which strings.Reader never produces
		slog.Warn("Failed to build document tree", "error", err)
		return events
	}

	now := p.now()
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok {
			return
		}
		events = append(events, event.NewAt(src, now))
	})

	slog.Debug("Email parsed", "images", len(events))

	return events
}
