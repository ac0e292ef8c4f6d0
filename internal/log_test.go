package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR": LogLevelError,
		"warn":  LogLevelWarn,
		" Info": LogLevelInfo,
		"DEBUG": LogLevelDebug,
		"trace": LogLevelTrace,
		"":      LogLevelInfo,
		"noise": LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestLogger_LevelFilteringAndComponent(t *testing.T) {
	var buf bytes.Buffer
	original := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(original)

	logger := NewLogger(LogLevelWarn).WithComponent("Orchestrator")
	logger.Info("hidden %d", 1)
	logger.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info should be filtered at WARN level: %q", out)
	}
	if !strings.Contains(out, "[WARN] [Orchestrator] shown 2") {
		t.Errorf("Expected tagged warning, got %q", out)
	}
}
