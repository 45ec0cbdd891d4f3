package api

import (
	"cmp"
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/lifeoc/event-relay/app/relay"
)

type LambdaHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// NewLambdaHandler serves the relay behind API Gateway or a function URL
// with the same responses as the HTTP server. Failures are reported in the
// response, never as an invocation error.
func NewLambdaHandler(r RelayInterface, apiAccessKey string) LambdaHandler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		id := cmp.Or(req.RequestContext.RequestID, header(req.Headers, requestIDHeader), uuid.NewString())
		ctx = relay.WithRequestID(ctx, id)

		if apiAccessKey != "" {
			provided := apiKeyFrom(header(req.Headers, "X-API-Key"), header(req.Headers, "Authorization"))
			if provided == "" || !validKey(provided, apiAccessKey) {
				slog.Warn("Rejected unauthenticated request", "request_id", id)
				return textResponse(http.StatusUnauthorized, "Invalid API key", id), nil
			}
		}

		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				slog.Error("Failed to decode base64 body", "request_id", id, "error", err)
				return textResponse(http.StatusBadRequest, messageParseFailed, id), nil
			}
			body = decoded
		}

		_, err := r.Handle(ctx, body, header(req.Headers, "Content-Type"))

		status, message := responseFor(err)
		return textResponse(status, message, id), nil
	}
}

func textResponse(status int, body, requestID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":  "text/plain; charset=utf-8",
			requestIDHeader: requestID,
		},
		Body: body,
	}
}

// header looks a name up case-insensitively; gateways differ in how they
// normalize header names.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
