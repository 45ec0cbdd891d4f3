package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/lifeoc/event-relay/app/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler_Success(t *testing.T) {
	stub := &relayStub{}
	stub.On("Handle", mock.MatchedBy(func(ctx context.Context) bool {
		return relay.RequestID(ctx) == "aws-req-1"
	}), []byte(`<img src="a.jpg">`), "text/html").Return(relay.Result{Events: 1, Published: 1}, nil)

	req := events.APIGatewayProxyRequest{
		Body:    `<img src="a.jpg">`,
		Headers: map[string]string{"content-type": "text/html"},
	}
	req.RequestContext.RequestID = "aws-req-1"

	resp, err := NewLambdaHandler(stub, "")(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Success!", resp.Body)
	assert.Equal(t, "aws-req-1", resp.Headers[requestIDHeader])
	stub.AssertExpectations(t)
}

func TestLambdaHandler_Base64Body(t *testing.T) {
	stub := &relayStub{}
	stub.On("Handle", mock.Anything, []byte(`<img src="b.jpg">`), "").Return(relay.Result{}, nil)

	req := events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(`<img src="b.jpg">`)),
		IsBase64Encoded: true,
	}

	resp, err := NewLambdaHandler(stub, "")(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stub.AssertExpectations(t)
}

func TestLambdaHandler_InvalidBase64(t *testing.T) {
	stub := &relayStub{}

	resp, err := NewLambdaHandler(stub, "")(context.Background(), events.APIGatewayProxyRequest{
		Body:            "%%%not-base64",
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	stub.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything)
}

func TestLambdaHandler_FailureIsResponseNotError(t *testing.T) {
	stub := &relayStub{}
	stub.On("Handle", mock.Anything, mock.Anything, mock.Anything).Return(relay.Result{}, errors.New("cms down"))

	resp, err := NewLambdaHandler(stub, "")(context.Background(), events.APIGatewayProxyRequest{Body: `<img src="x">`})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.NotContains(t, resp.Body, "cms down")
}

func TestLambdaHandler_APIKey(t *testing.T) {
	stub := &relayStub{}
	stub.On("Handle", mock.Anything, mock.Anything, mock.Anything).Return(relay.Result{}, nil)
	handler := NewLambdaHandler(stub, "s3cret")

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = handler(context.Background(), events.APIGatewayProxyRequest{
		Headers: map[string]string{"x-api-key": "s3cret"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHeader_CaseInsensitive(t *testing.T) {
	headers := map[string]string{"content-type": "text/html", "X-Request-ID": "abc"}

	assert.Equal(t, "text/html", header(headers, "Content-Type"))
	assert.Equal(t, "abc", header(headers, "x-request-id"))
	assert.Equal(t, "", header(headers, "Authorization"))
	assert.Equal(t, "", header(nil, "Authorization"))
}
