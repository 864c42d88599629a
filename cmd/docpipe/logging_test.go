package main

// Notes:
// - newLogger: we check level selection and the JSON/console switch by
//   writing into a buffer. Console output is uncolored for non-terminals.

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alnah/go-docpipe/internal/config"
)

// ---------------------------------------------------------------------------
// TestNewLogger - Level and format selection
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.LogConfig
		quiet   bool
		verbose bool
		want    zerolog.Level
	}{
		{"default info", config.LogConfig{}, false, false, zerolog.InfoLevel},
		{"configured warn", config.LogConfig{Level: "WARN"}, false, false, zerolog.WarnLevel},
		{"invalid level falls back", config.LogConfig{Level: "loud"}, false, false, zerolog.InfoLevel},
		{"quiet wins", config.LogConfig{Level: "debug"}, true, false, zerolog.ErrorLevel},
		{"verbose lowers", config.LogConfig{Level: "warn"}, false, true, zerolog.DebugLevel},
		{"verbose keeps trace", config.LogConfig{Level: "trace"}, false, true, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log := newLogger(&bytes.Buffer{}, tt.cfg, tt.quiet, tt.verbose)
			if got := log.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("json format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := newLogger(&buf, config.LogConfig{Format: "json"}, false, false)
		log.Info().Str("route", "/guide").Msg("built")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
		}
		if entry["route"] != "/guide" || entry["message"] != "built" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("console format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := newLogger(&buf, config.LogConfig{}, false, false)
		log.Warn().Msg("slow document")

		out := buf.String()
		if !strings.Contains(out, "WRN") || !strings.Contains(out, "slow document") {
			t.Errorf("console output = %q", out)
		}
		if strings.Contains(out, "\x1b[") {
			t.Errorf("console output should not be colored: %q", out)
		}
	})
}
