package main

// Notes:
// - exitCodeFor: we test the sentinel errors of the CLI, config, routes and
//   root packages, plus wrapped errors to verify the errors.Is chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general,
//   2=usage) and custom codes below 126.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	docpipe "github.com/alnah/go-docpipe"
	"github.com/alnah/go-docpipe/internal/config"
	"github.com/alnah/go-docpipe/internal/routes"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Document failures (exit 4)
		{"documents failed", ErrDocumentsFailed, ExitDocuments},
		{"wrapped documents failed", fmt.Errorf("%w: 2 of 5", ErrDocumentsFailed), ExitDocuments},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"invalid option", docpipe.ErrInvalidOption, ExitUsage},
		{"duplicate route", routes.ErrDuplicateRoute, ExitUsage},
		{"invalid pattern", routes.ErrInvalidPattern, ExitUsage},
		{"env file wins over not exist", fmt.Errorf("%w: %w", ErrEnvFile, os.ErrNotExist), ExitUsage},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"not a directory", routes.ErrNotDirectory, ExitIO},
		{"read document", ErrReadDocument, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"write metrics", ErrWriteMetrics, ExitIO},
		{"wrapped file not exist", fmt.Errorf("discovering documents: %w", os.ErrNotExist), ExitIO},

		// General errors (exit 1)
		{"unknown error", errors.New("something else"), ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("standard codes = %d/%d/%d, want 0/1/2", ExitSuccess, ExitGeneral, ExitUsage)
	}
	codes := map[string]int{"ExitIO": ExitIO, "ExitDocuments": ExitDocuments}
	seen := map[int]bool{ExitSuccess: true, ExitGeneral: true, ExitUsage: true}
	for name, code := range codes {
		if code >= 126 {
			t.Errorf("%s = %d, want < 126", name, code)
		}
		if seen[code] {
			t.Errorf("%s = %d collides with another code", name, code)
		}
		seen[code] = true
	}
}
