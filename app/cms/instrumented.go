package cms

import (
	"context"
	"time"

	"github.com/lifeoc/event-relay/app/event"
	"github.com/lifeoc/event-relay/app/metrics"
)

var _ Publisher = (*Instrumented)(nil)

// Instrumented records the outcome and latency of every publish. A nil
// Metrics records nothing.
type Instrumented struct {
	next    Publisher
	metrics *metrics.Metrics
}

func NewInstrumented(next Publisher, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (p *Instrumented) Publish(ctx context.Context, e event.Event) error {
	if p.metrics == nil {
		return p.next.Publish(ctx, e)
	}

	start := time.Now()
	err := p.next.Publish(ctx, e)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailed
		if StatusCode(err) != 0 {
			outcome = metrics.OutcomeRejected
		}
	}
	p.metrics.ObservePublish(outcome, time.Since(start))

	return err
}
