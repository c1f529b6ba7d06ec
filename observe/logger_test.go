package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestLogger_JSONOutput verifies entries are emitted as JSON lines with
// the standard envelope fields.
func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "session ready",
		String("name", "db"),
		Int("requests", 12),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if entry["level"] != "info" {
		t.Errorf("expected level=info, got %v", entry["level"])
	}
	if entry["msg"] != "session ready" {
		t.Errorf("expected msg='session ready', got %v", entry["msg"])
	}
	if entry["name"] != "db" {
		t.Errorf("expected name=db, got %v", entry["name"])
	}
	if v, ok := entry["requests"].(float64); !ok || v != 12 {
		t.Errorf("expected requests=12, got %v", entry["requests"])
	}
	if _, ok := entry["timestamp"].(string); !ok {
		t.Error("expected timestamp field")
	}
}

// TestLogger_LevelFiltering verifies entries below the configured level
// are dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Verbose(context.Background(), "verbose message")
	logger.Debug(context.Background(), "debug message")
	logger.Info(context.Background(), "info message")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got: %s", buf.String())
	}

	logger.Warn(context.Background(), "warn message")
	logger.Error(context.Background(), "error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %s", len(lines), buf.String())
	}
}

// TestLogger_VerboseLevel verifies verbose is the lowest level and
// passes through when configured.
func TestLogger_VerboseLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("verbose", &buf)

	logger.Verbose(context.Background(), "queue depth", Int("depth", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["level"] != "verbose" {
		t.Errorf("expected level=verbose, got %v", entry["level"])
	}
}

// TestLogger_ErrorFieldsStringified verifies error-valued fields are
// rendered as their message.
func TestLogger_ErrorFieldsStringified(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "init failed", Err(errors.New("dial tcp: refused")))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["error"] != "dial tcp: refused" {
		t.Errorf("expected error='dial tcp: refused', got %v", entry["error"])
	}
}

// TestLogger_With verifies scoped loggers attach their fields to every
// entry without mutating the parent.
func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf).(ExtendedLogger)

	scoped := base.With(String("component", "recycler"))
	scoped.Info(context.Background(), "session recycled", Int("requests", 100))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["component"] != "recycler" {
		t.Errorf("expected component=recycler, got %v", entry["component"])
	}

	buf.Reset()
	base.Info(context.Background(), "plain entry")

	entry = map[string]any{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if _, ok := entry["component"]; ok {
		t.Error("parent logger should not carry scoped fields")
	}
}

// TestParseLogLevel verifies level parsing, including the info fallback
// for unknown strings.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"verbose", LevelVerbose},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestNopLogger verifies the no-op logger accepts every level without
// side effects.
func TestNopLogger(t *testing.T) {
	logger := NewNop()

	ctx := context.Background()
	logger.Error(ctx, "e", Err(errors.New("x")))
	logger.Warn(ctx, "w")
	logger.Info(ctx, "i", Duration("d", time.Second))
	logger.Debug(ctx, "d")
	logger.Verbose(ctx, "v", Bool("b", true))
}
