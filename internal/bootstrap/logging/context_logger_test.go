package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"section3/internal/errs"
)

func TestWithAttrsOverridesByKey(t *testing.T) {
	ctx := WithComponent(context.Background(), "usecase.compliance")
	ctx = WithAttrs(ctx, slog.String("job", "notifications"))
	ctx = WithComponent(ctx, "usecase.notifications")

	attrs := Attrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("Attrs() len = %d, want 2: %v", len(attrs), attrs)
	}
	if attrs[0].Key != "component" || attrs[0].Value.String() != "usecase.notifications" {
		t.Fatalf("Attrs()[0] = %v", attrs[0])
	}
}

func TestNewJSONLoggerWritesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(WithComponent(ctx, "transport.httpapi"), "req-1")
	Debug(ctx, "http request served", slog.Int("status", 200))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["component"] != "transport.httpapi" || line["request_id"] != "req-1" || line["msg"] != "http request served" {
		t.Fatalf("log line = %v", line)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "text"); !errs.Is(err, errs.KindInvalidInput) {
		t.Fatalf("New(bad level) error = %v", err)
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); !errs.Is(err, errs.KindInvalidInput) {
		t.Fatalf("New(bad format) error = %v", err)
	}
}

func TestLoggerFallsBackToDefault(t *testing.T) {
	if Logger(context.Background()) == nil {
		t.Fatalf("Logger() returned nil")
	}
}
