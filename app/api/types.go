package api

import (
	"context"

	"github.com/lifeoc/event-relay/app/relay"
)

type RelayInterface interface {
	Handle(ctx context.Context, body []byte, contentType string) (relay.Result, error)
}

var _ RelayInterface = (*relay.Relay)(nil)

type Handler struct {
	relay       RelayInterface
	version     string
	cmsEndpoint string
}

const (
	// inbound emails with inline assets can be large, but not this large
	maxBodyBytes = 10 << 20

	requestIDHeader = "X-Request-ID"
)
