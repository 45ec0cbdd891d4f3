package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lifeoc/event-relay/app/cms"
	"github.com/lifeoc/event-relay/app/email"
	"github.com/lifeoc/event-relay/app/event"
	"github.com/lifeoc/event-relay/app/metrics"
	"golang.org/x/sync/errgroup"
)

// Result summarizes one inbound email for logging. Callers only learn
// success or failure.
type Result struct {
	Events    int
	Published int
	Failed    int
	Duration  time.Duration
}

type Relay struct {
	decoder        *email.Decoder
	parser         *email.Parser
	publisher      cms.Publisher
	metrics        *metrics.Metrics
	maxConcurrency int
}

type Option func(*Relay)

// WithMaxConcurrency caps in-flight publish calls per request. Zero or
// less means one goroutine per event.
func WithMaxConcurrency(n int) Option {
	return func(r *Relay) {
		r.maxConcurrency = n
	}
}

func WithParser(p *email.Parser) Option {
	return func(r *Relay) {
		r.parser = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func New(publisher cms.Publisher, opts ...Option) *Relay {
	r := &Relay{
		decoder:   email.NewDecoder(),
		parser:    email.NewParser(),
		publisher: publisher,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle decodes and parses an email body and publishes every event it
// contains concurrently. All publishes run to completion; the first error
// is returned once they have settled. Events that were published before a
// sibling failed stay in the CMS.
func (r *Relay) Handle(ctx context.Context, body []byte, contentType string) (Result, error) {
	start := time.Now()
	requestID := RequestID(ctx)

	html, err := r.decoder.Run(body, contentType)
	if err != nil {
		r.observeRequest(metrics.OutcomeInvalid)
		slog.Error("Failed to decode email", "request_id", requestID, "bytes", len(body), "error", err)
		return Result{Duration: time.Since(start)}, err
	}

	events := r.parser.Run(html)
	if r.metrics != nil {
		r.metrics.ObserveParsed(len(events))
	}

	result, err := r.publishAll(ctx, requestID, events)
	result.Duration = time.Since(start)

	if err != nil {
		r.observeRequest(metrics.OutcomeFailed)
		slog.Error("Request failed",
			"request_id", requestID,
			"events", result.Events,
			"published", result.Published,
			"failed", result.Failed,
			"duration", result.Duration,
			"error", err)
		return result, fmt.Errorf("failed to publish %d of %d events: %w", result.Failed, result.Events, err)
	}

	r.observeRequest(metrics.OutcomeSuccess)
	slog.Info("Request completed",
		"request_id", requestID,
		"events", result.Events,
		"published", result.Published,
		"duration", result.Duration)

	return result, nil
}

func (r *Relay) publishAll(ctx context.Context, requestID string, events []event.Event) (Result, error) {
	result := Result{Events: len(events)}
	if len(events) == 0 {
		return result, nil
	}

	var published, failed atomic.Int32

	// A plain Group: a failure must not cancel in-flight siblings.
	var g errgroup.Group
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}

	for _, e := range events {
		g.Go(func() error {
			if err := r.publisher.Publish(ctx, e); err != nil {
				failed.Add(1)
				slog.Warn("Failed to publish event",
					"request_id", requestID,
					"image", e.Image,
					"start_date", e.StartDate,
					"status", cms.StatusCode(err),
					"error", err)
				return err
			}
			published.Add(1)
			slog.Debug("Event published", "request_id", requestID, "image", e.Image)
			return nil
		})
	}

	err := g.Wait()

	result.Published = int(published.Load())
	result.Failed = int(failed.Load())

	return result, err
}

func (r *Relay) observeRequest(outcome string) {
	if r.metrics != nil {
		r.metrics.ObserveRequest(outcome)
	}
}
