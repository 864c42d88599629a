package main

// Notes:
// - runMain: dispatch only; each command has its own test file.
// - setMaxProcs is not tested: it mutates process-wide GOMAXPROCS.

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", []string{"docpipe"}, ExitUsage, "", "Usage: docpipe"},
		{"version", []string{"docpipe", "version"}, ExitSuccess, "docpipe " + Version, ""},
		{"version flag", []string{"docpipe", "--version"}, ExitSuccess, "docpipe " + Version, ""},
		{"help flag", []string{"docpipe", "--help"}, ExitSuccess, "Commands:", ""},
		{"help command", []string{"docpipe", "help", "build"}, ExitSuccess, "docpipe build", ""},
		{"unknown command", []string{"docpipe", "publish"}, ExitUsage, "", "Unknown command: publish"},
		{"completion", []string{"docpipe", "completion", "bash"}, ExitSuccess, "complete -F _docpipe_completions docpipe", ""},
		{"completion bad shell", []string{"docpipe", "completion", "tcsh"}, ExitUsage, "", "error:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv(nil)
			if code := runMain(tt.args, env); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasVerbose - Early verbose detection
// ---------------------------------------------------------------------------

func TestHasVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"docs", "-v"}, true},
		{[]string{"--verbose"}, true},
		{[]string{"--", "-v"}, false},
		{[]string{"-q"}, false},
	}
	for _, tt := range tests {
		if got := hasVerbose(tt.args); got != tt.want {
			t.Errorf("hasVerbose(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestReportError - Error printing and exit codes
// ---------------------------------------------------------------------------

func TestReportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStderr string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"help requested", fmt.Errorf("%w: %w", ErrUsage, flag.ErrHelp), ExitSuccess, ""},
		{"usage", fmt.Errorf("%w: bad", ErrUsage), ExitUsage, "error: invalid usage: bad"},
		{"general", errors.New("boom"), ExitGeneral, "error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := newTestEnv(nil)
			if code := reportError(tt.err, env); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantStderr == "" && stderr.String() != "" {
				t.Errorf("stderr = %q, want empty", stderr.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
