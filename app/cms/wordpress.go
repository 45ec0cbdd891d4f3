package cms

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lifeoc/event-relay/app/event"
)

const (
	DefaultEndpoint = "https://lifeoc.org/wp-json/tribe/events/v1/events"
	DefaultTimeout  = 30 * time.Second

	// bytes of a rejected response kept for the log line
	errorBodyLimit = 512
)

var _ Publisher = (*WordPress)(nil)

// WordPress publishes events through The Events Calendar REST API using
// application-password Basic authentication.
type WordPress struct {
	endpoint      string
	authorization string
	userAgent     string
	timeout       time.Duration
	httpClient    *http.Client
}

type Option func(*WordPress)

func WithEndpoint(endpoint string) Option {
	return func(w *WordPress) {
		if endpoint != "" {
			w.endpoint = endpoint
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(w *WordPress) {
		if timeout > 0 {
			w.timeout = timeout
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(w *WordPress) {
		w.userAgent = userAgent
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(w *WordPress) {
		if client != nil {
			w.httpClient = client
		}
	}
}

func NewWordPress(username, password string, opts ...Option) (*WordPress, error) {
	if username == "" {
		return nil, fmt.Errorf("CMS username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("CMS password is required")
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))

	w := &WordPress{
		endpoint:      DefaultEndpoint,
		authorization: "Basic " + credentials,
		timeout:       DefaultTimeout,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.httpClient == nil {
		w.httpClient = newHTTPClient(w.timeout)
	}

	return w, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func (w *WordPress) Endpoint() string {
	return w.endpoint
}

func (w *WordPress) Publish(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return &PublishError{Message: "failed to encode event", Err: err}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &PublishError{Message: "failed to create request", Err: err}
	}

	req.Header.Set("Authorization", w.authorization)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return &PublishError{Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		slog.Debug("CMS rejected event",
			"image", e.Image,
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(excerpt)))

		return &PublishError{
			StatusCode: resp.StatusCode,
			Message:    "Failed to create event",
		}
	}

	// drain so the connection returns to the pool
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
