package core

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"croppredict/internal/config"
	"croppredict/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Environment: "local",
		Server: config.ServerConfig{
			Port:           "8080",
			RequestTimeout: 5 * time.Second,
		},
		Build: config.BuildInfo{Version: "1.2.3"},
	}
	srv, err := NewServer(cfg, discardLogger())
	require.NoError(t, err)
	return srv
}

type recordedRequest struct {
	method, endpoint, status string
}

type recordingMetrics struct {
	requests []recordedRequest
	outcomes []types.OutcomeKind
	closed   bool
}

func (m *recordingMetrics) RecordRequest(method, endpoint, status string, _ time.Duration) {
	m.requests = append(m.requests, recordedRequest{method, endpoint, status})
}

func (m *recordingMetrics) RecordOutcome(kind types.OutcomeKind, _ time.Duration) {
	m.outcomes = append(m.outcomes, kind)
}

func (m *recordingMetrics) Close() error {
	m.closed = true
	return nil
}
