package internal

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	fn()
	return buf.String()
}

func TestLogger_TraceGatedByLevel(t *testing.T) {
	out := captureLog(t, func() {
		NewLogger(LogLevelDebug).Trace("hidden %d", 1)
	})
	if out != "" {
		t.Errorf("trace emitted below trace level: %q", out)
	}

	out = captureLog(t, func() {
		NewLogger(LogLevelTrace).With("engine").Trace("pooled %d studies", 3)
	})
	if !strings.Contains(out, "[TRACE] [engine] pooled 3 studies") {
		t.Errorf("trace output = %q, want tagged trace line", out)
	}
}

func TestNewDefaultLogger_ReadsTraceLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "TRACE")
	if got := NewDefaultLogger().GetLevel(); got != LogLevelTrace {
		t.Errorf("level = %d, want LogLevelTrace", got)
	}
}
