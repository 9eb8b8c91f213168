package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"croppredict/internal/types"
)

func withRequestID(r *http.Request, id string) *http.Request {
	return r.WithContext(types.WithRequestID(r.Context(), id))
}

func TestJSON_WritesBodyAndStatus(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	JSON(w, r, http.StatusCreated, map[string]string{"label": "rice"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"label":"rice"}`, w.Body.String())
}

func TestJSON_MarshalFailure(t *testing.T) {
	w := httptest.NewRecorder()
	r := withRequestID(httptest.NewRequest(http.MethodGet, "/", nil), "req-marshal")

	JSON(w, r, http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), body.Error.Code)
	assert.Equal(t, "req-marshal", body.Error.RequestID)
}

func TestEnvelope_IncludesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := withRequestID(httptest.NewRequest(http.MethodGet, "/", nil), "req-1")

	Envelope(w, r, http.StatusOK, []string{"a"})

	assert.JSONEq(t, `{"data":["a"],"meta":{"request_id":"req-1"}}`, w.Body.String())
}

func TestEnvelope_OmitsMetaWithoutRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Envelope(w, r, http.StatusOK, 1)

	assert.JSONEq(t, `{"data":1}`, w.Body.String())
}

func TestError_AppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := withRequestID(httptest.NewRequest(http.MethodPost, "/", nil), "req-2")

	cause := errors.New("dial tcp 10.0.0.1: connection refused")
	err := types.NewAppErrorWithDetails(types.ErrCodeUpstreamInference, "inference backend unavailable", cause,
		map[string]any{"attempts": 3})
	Error(w, r, err)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(types.ErrCodeUpstreamInference), body.Error.Code)
	assert.Equal(t, "inference backend unavailable", body.Error.Message)
	assert.Equal(t, float64(3), body.Error.Details["attempts"])
	assert.Equal(t, "req-2", body.Error.RequestID)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestError_WrappedAppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	inner := types.NewAppError(types.ErrCodeModelUnavailable, "model not loaded", nil)
	Error(w, r, errors.Join(errors.New("outer"), inner))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestError_PlainErrorIsMasked(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(w, r, errors.New("scaler: index out of range"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), body.Error.Code)
	assert.NotContains(t, w.Body.String(), "scaler")
}

type decodeTarget struct {
	Nitrogen    float64  `json:"nitrogen"`
	Temperature *float64 `json:"temperature"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		wantMessage string
	}{
		{name: "valid", body: `{"nitrogen": 90, "temperature": 21.5}`},
		{name: "trailing newline", body: "{\"nitrogen\": 90}\n"},
		{name: "empty body", body: ``, wantErr: true, wantMessage: "request body must not be empty"},
		{name: "syntax error", body: `{"nitrogen": }`, wantErr: true, wantMessage: "malformed JSON in request body"},
		{name: "unknown field", body: `{"nitrogen": 1, "sodium": 2}`, wantErr: true, wantMessage: `unknown field in request body: "sodium"`},
		{name: "wrong type", body: `{"nitrogen": "lots"}`, wantErr: true, wantMessage: "invalid value for field"},
		{name: "two objects", body: `{"nitrogen": 1} {"nitrogen": 2}`, wantErr: true, wantMessage: "request body must contain a single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst decodeTarget
			err := DecodeJSON(w, r, &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, types.ErrCodeValidationInvalidJSON, appErr.Code)
			assert.Equal(t, tt.wantMessage, appErr.Message)
		})
	}
}

func TestDecodeJSON_TypeErrorDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nitrogen": "lots"}`))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "nitrogen", appErr.Details["field"])
	assert.Equal(t, "float64", appErr.Details["expected"])
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	big := `{"nitrogen": 1, "pad": "` + strings.Repeat("x", maxRequestBodySize) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

	var dst map[string]any
	err := DecodeJSON(w, r, &dst)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "request body must not exceed 1MB", appErr.Message)
}
