package core

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayRequest(method, path string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Headers: map[string]string{},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			DomainName: "api.example",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.9",
			},
		},
	}
}

func TestLambdaHandler_RoutesThroughChassis(t *testing.T) {
	srv := mountedServer(t, nil)

	req := gatewayRequest(http.MethodGet, "/v1/items/9")
	req.Headers["x-request-id"] = "lambda-req-1"

	resp, err := srv.LambdaHandler()(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"id":"9"`)
	assert.Contains(t, resp.Body, `"request_id":"lambda-req-1"`)
	assert.Equal(t, "lambda-req-1", resp.Headers["X-Request-Id"])
	assert.Equal(t, "nosniff", resp.Headers["X-Content-Type-Options"])
	assert.False(t, resp.IsBase64Encoded)
}

func TestLambdaHandler_Base64RequestBody(t *testing.T) {
	srv := newTestServer(t)
	var seen string
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]float64
			if err := DecodeJSON(w, r, &body); err != nil {
				Error(w, r, err)
				return
			}
			seen = r.Header.Get("Content-Type")
			JSON(w, r, http.StatusCreated, body)
		})
	})
	srv.MountRoutes()

	req := gatewayRequest(http.MethodPost, "/v1/echo")
	req.Headers["content-type"] = "application/json"
	req.Body = base64.StdEncoding.EncodeToString([]byte(`{"nitrogen":90}`))
	req.IsBase64Encoded = true

	resp, err := srv.LambdaHandler()(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", seen)
	assert.JSONEq(t, `{"nitrogen":90}`, resp.Body)
}

func TestLambdaHandler_NotFoundEnvelope(t *testing.T) {
	srv := mountedServer(t, nil)

	resp, err := srv.LambdaHandler()(context.Background(), gatewayRequest(http.MethodGet, "/nope"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Body, `"not_found_route"`)
}
