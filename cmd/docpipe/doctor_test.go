package main

// Notes:
// - runDoctorCmd: run against temp content roots selected through injected
//   DOCPIPE_INPUT_DIR/DOCPIPE_OUTPUT_DIR; JSON output is decoded for checks.
// - isContainer: /.dockerenv depends on the host, so env-based signals are
//   only asserted when that file is absent.

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func doctorEnv(t *testing.T, content, output string, extra map[string]string) (*Environment, *syncBuffer, *syncBuffer) {
	t.Helper()
	vars := map[string]string{
		"DOCPIPE_INPUT_DIR":  content,
		"DOCPIPE_OUTPUT_DIR": output,
	}
	for k, v := range extra {
		vars[k] = v
	}
	return newTestEnv(vars)
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Diagnostics output and exit codes
// ---------------------------------------------------------------------------

func TestRunDoctorCmd(t *testing.T) {
	t.Parallel()

	t.Run("ready json", func(t *testing.T) {
		t.Parallel()

		content := t.TempDir()
		writeTree(t, content, siteFiles)
		out := filepath.Join(t.TempDir(), "not", "yet", "created")
		env, stdout, stderr := doctorEnv(t, content, out, nil)

		code := runDoctorCmd([]string{"--json", "--env-file", writeEnvFile(t, "")}, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want %d\nstdout: %s\nstderr: %s", code, ExitSuccess, stdout.String(), stderr.String())
		}

		var r doctorResult
		if err := json.Unmarshal([]byte(stdout.String()), &r); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
		}
		if r.Status != statusReady {
			t.Errorf("status = %q, want ready (warnings=%v errors=%v)", r.Status, r.Warnings, r.Errors)
		}
		if !r.Config.Valid || r.Config.Source != "defaults" {
			t.Errorf("config = %+v, want valid defaults", r.Config)
		}
		if r.Content.Documents != 2 {
			t.Errorf("documents = %d, want 2", r.Content.Documents)
		}
		if !r.Output.Writable {
			t.Error("output should be writable through its nearest parent")
		}
		if len(r.Pipeline.DirectiveKinds) == 0 || len(r.Pipeline.Languages) == 0 {
			t.Errorf("pipeline = %+v, want kinds and languages", r.Pipeline)
		}
		if r.Env.Workers < 1 {
			t.Errorf("workers = %d, want >= 1", r.Env.Workers)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Error("doctor must not create the output directory")
		}
	})

	t.Run("missing content is an error", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "missing")
		env, stdout, _ := doctorEnv(t, missing, t.TempDir(), nil)

		code := runDoctorCmd([]string{"--env-file", writeEnvFile(t, "")}, env)
		if code != ExitGeneral {
			t.Errorf("exit code = %d, want %d", code, ExitGeneral)
		}
		out := stdout.String()
		if !strings.Contains(out, "Content directory not found") {
			t.Errorf("output missing content error:\n%s", out)
		}
		if !strings.Contains(out, "Status: Not ready") {
			t.Errorf("output missing status:\n%s", out)
		}
	})

	t.Run("empty content and unknown variable warn", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := doctorEnv(t, t.TempDir(), t.TempDir(), map[string]string{"DOCPIPE_WORKRES": "2"})

		code := runDoctorCmd([]string{"--env-file", writeEnvFile(t, "")}, env)
		if code != ExitSuccess {
			t.Errorf("exit code = %d, want %d", code, ExitSuccess)
		}
		out := stdout.String()
		for _, want := range []string{"[WARN] No documents found", "DOCPIPE_WORKRES", "Status: Ready with warnings"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := doctorEnv(t, t.TempDir(), t.TempDir(), map[string]string{"DOCPIPE_DEBOUNCE": "1h"})

		code := runDoctorCmd([]string{"--json", "--env-file", writeEnvFile(t, "")}, env)
		if code != ExitGeneral {
			t.Errorf("exit code = %d, want %d", code, ExitGeneral)
		}
		var r doctorResult
		if err := json.Unmarshal([]byte(stdout.String()), &r); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if r.Config.Valid || len(r.Errors) == 0 {
			t.Errorf("config = %+v errors = %v, want invalid", r.Config, r.Errors)
		}
	})

	t.Run("bad flag", func(t *testing.T) {
		t.Parallel()

		env, _, _ := newTestEnv(nil)
		if code := runDoctorCmd([]string{"--bogus"}, env); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestIsContainer - Container detection signals
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	t.Parallel()

	lookupFrom := func(vars map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		}
	}

	ok, hint := isContainer(lookupFrom(map[string]string{"DOCPIPE_CONTAINER": "1"}))
	if !ok || hint != "DOCPIPE_CONTAINER=1" {
		t.Errorf("override: got (%v, %q)", ok, hint)
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		t.Skip("running inside Docker; env signals are shadowed")
	}

	tests := []struct {
		name     string
		vars     map[string]string
		want     bool
		wantHint string
	}{
		{"none", nil, false, ""},
		{"podman", map[string]string{"container": "podman"}, true, "container=podman"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, true, "KUBERNETES_SERVICE_HOST"},
	}
	for _, tt := range tests {
		got, hint := isContainer(lookupFrom(tt.vars))
		if got != tt.want || hint != tt.wantHint {
			t.Errorf("%s: got (%v, %q), want (%v, %q)", tt.name, got, hint, tt.want, tt.wantHint)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintDoctorResult - Human-readable sections
// ---------------------------------------------------------------------------

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	r := &doctorResult{
		Status: statusReady,
		Config: configInfo{Source: "site.yaml", Valid: true},
		Pipeline: pipelineInfo{
			DirectiveKinds:    []string{"note", "tip"},
			MaxDirectiveDepth: 8,
			Languages:         []string{"go", "python"},
			TOCDepth:          [2]int{2, 3},
		},
		Content: contentInfo{Dir: "docs", Exists: true, Documents: 12},
		Output:  outputInfo{Dir: "dist", Writable: true},
		Env:     envInfo{OS: "linux", Arch: "amd64", GoMaxProcs: 4, Workers: 4, CI: true},
	}

	var buf bytes.Buffer
	printDoctorResult(&buf, r, true)
	out := buf.String()
	for _, want := range []string{
		"[OK] Source: site.yaml",
		"[OK] Directive kinds: [note tip] (max depth 8)",
		"[OK] Highlighting: 2 languages",
		"         python",
		"[OK] Table of contents: h2-h3",
		"[OK] docs: 12 documents",
		"[OK] Output dist: writable",
		"[OK] CI: detected",
		"Status: Ready to build",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
