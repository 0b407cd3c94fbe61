package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func jsonLogger(level string) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
	return l, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l, buf := jsonLogger("invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("invalid level should fall back to info")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected info message")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.GetLogger().GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", l.GetLogger().GetLevel())
	}
}

func TestCriticalDoesNotExit(t *testing.T) {
	l, buf := jsonLogger("info")
	l.Critical("Request GET https://api.test/v1/cases/42 failed", map[string]interface{}{FieldMethod: "GET"})

	m := decodeLine(t, buf)
	if m["level"] != "fatal" {
		t.Errorf("expected level fatal, got %v", m["level"])
	}
	if m[FieldMethod] != "GET" {
		t.Errorf("expected method GET, got %v", m[FieldMethod])
	}
}

func TestTraceLevel(t *testing.T) {
	l, buf := jsonLogger("trace")
	l.Trace("Request GET https://api.test/v1/cases/42 / Response '200'", RequestFields("GET", "https://api.test/v1/cases/42", 200, 15*time.Millisecond))

	m := decodeLine(t, buf)
	if m["level"] != "trace" {
		t.Errorf("expected level trace, got %v", m["level"])
	}
	if m[FieldStatus] != float64(200) {
		t.Errorf("expected status 200, got %v", m[FieldStatus])
	}
	if m[FieldDuration] != float64(15) {
		t.Errorf("expected duration 15, got %v", m[FieldDuration])
	}
	if m[FieldService] != "test-svc" {
		t.Errorf("expected service field, got %v", m[FieldService])
	}
}

func TestTraceSuppressedAtInfo(t *testing.T) {
	l, buf := jsonLogger("info")
	l.Trace("nope")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
	if l.Enabled(zerolog.TraceLevel) {
		t.Error("trace should not be enabled at info")
	}
	if !l.Enabled(zerolog.ErrorLevel) {
		t.Error("error should be enabled at info")
	}
}

func TestWithComponent(t *testing.T) {
	l, buf := jsonLogger("info")
	l.WithComponent("connector").Info("hello")
	m := decodeLine(t, buf)
	if m[FieldComponent] != "connector" {
		t.Errorf("expected component field, got %v", m[FieldComponent])
	}
}

func TestWithContext(t *testing.T) {
	l, buf := jsonLogger("info")
	ctx := ContextWithRequestID(context.Background(), "req-1")
	l.WithContext(ctx).Info("hello")
	m := decodeLine(t, buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request id, got %v", m[FieldRequestID])
	}
}

func TestWithContext_NoRequestID(t *testing.T) {
	l, _ := jsonLogger("info")
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected the same logger when the context carries no request id")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	l, buf := jsonLogger("info")
	l.WithFields(map[string]interface{}{"kind": "Case"}).WithError(errors.New("boom")).Error("failed")
	m := decodeLine(t, buf)
	if m["kind"] != "Case" {
		t.Errorf("expected kind field, got %v", m["kind"])
	}
	if m["error"] != "boom" {
		t.Errorf("expected error field, got %v", m["error"])
	}
}

func TestConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithWriter(&Config{Level: "debug", Format: FormatConsole, NoColor: true}, "svc", buf)
	l.Warn("careful")
	if !strings.Contains(buf.String(), "[WRN]") {
		t.Errorf("expected [WRN] tag, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	Nop().Error("ignored") // should not panic
}

func TestSetGlobalLogger(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	l, buf := jsonLogger("info")
	SetGlobalLogger(l)
	Info("global")
	WithComponent("x").Warn("scoped")
	if !strings.Contains(buf.String(), "global") || !strings.Contains(buf.String(), "scoped") {
		t.Errorf("expected both messages, got %q", buf.String())
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected a default global logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != FormatConsole || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid trace json", Config{Level: "trace", Format: "json"}, false},
		{"valid info console", Config{Level: "info", Format: "console"}, false},
		{"bad level", Config{Level: "verbose", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(m), m)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("read", errors.New("bad"))
	if m[FieldOperation] != "read" || m[FieldError] != "bad" {
		t.Errorf("unexpected fields %v", m)
	}
}
