package app

import (
	"fmt"

	"github.com/lifeoc/event-relay/app/cfg"
	"github.com/lifeoc/event-relay/app/cms"
	"github.com/lifeoc/event-relay/app/metrics"
	"github.com/lifeoc/event-relay/app/relay"
)

// NewRelay wires the publisher chain and the relay from configuration:
// WordPress, wrapped in retries, wrapped in metrics. A nil m disables
// metrics.
func NewRelay(c *cfg.Cfg, m *metrics.Metrics) (*relay.Relay, error) {
	wordpress, err := cms.NewWordPress(c.CMSUsername, c.CMSPassword,
		cms.WithEndpoint(c.CMSEndpoint),
		cms.WithTimeout(c.CMSTimeout),
		cms.WithUserAgent(fmt.Sprintf("%s (%s)", c.UserAgent, c.Version)))
	if err != nil {
		return nil, fmt.Errorf("failed to create CMS publisher: %w", err)
	}

	var publisher cms.Publisher = wordpress
	if c.PublishAttempts > 1 {
		publisher = cms.NewRetrying(publisher, c.PublishAttempts, cms.DefaultRetryDelay, cms.DefaultMaxRetryDelay)
	}
	if m != nil {
		publisher = cms.NewInstrumented(publisher, m)
	}

	return relay.New(publisher,
		relay.WithMaxConcurrency(c.PublishMaxConcurrency),
		relay.WithMetrics(m)), nil
}
