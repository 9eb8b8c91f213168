package types

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestWithRequestID_GetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-abc")
	if got := GetRequestID(ctx); got != "req-abc" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-abc")
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q, want empty", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	stored := slog.New(slog.NewTextHandler(&buf, nil))
	fallback := slog.Default()

	if got := LoggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("expected fallback logger for empty context")
	}

	ctx := WithLogger(context.Background(), stored)
	LoggerFromContext(ctx, fallback).Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("stored logger not used, buffer = %q", buf.String())
	}
}
