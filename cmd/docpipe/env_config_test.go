package main

// Notes:
// - loadEnvConfig and applyEnvConfig are tested through an injected
//   lookup, so tests never touch the process environment.
// - newEnvSource with an empty path probes ./.env in the working directory;
//   that branch is not tested to avoid depending on the package directory.

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alnah/go-docpipe/internal/config"
)

func envSourceFor(vars, dotenv map[string]string) *envSource {
	env, _, _ := newTestEnv(vars)
	return &envSource{lookup: env.LookupEnv, environ: env.Environ, dotenv: dotenv}
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Reading DOCPIPE_* variables
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		vars  map[string]string
		check func(t *testing.T, c *envConfig)
	}{
		{
			name: "all string values",
			vars: map[string]string{
				"DOCPIPE_CONFIG":       "site",
				"DOCPIPE_INPUT_DIR":    "content",
				"DOCPIPE_OUTPUT_DIR":   "public",
				"DOCPIPE_LOG_LEVEL":    "debug",
				"DOCPIPE_LOG_FORMAT":   "json",
				"DOCPIPE_DEBOUNCE":     "1s",
				"DOCPIPE_METRICS_ADDR": ":9090",
				"DOCPIPE_METRICS_FILE": "docpipe.prom",
			},
			check: func(t *testing.T, c *envConfig) {
				if c.ConfigPath != "site" || c.InputDir != "content" || c.OutputDir != "public" {
					t.Errorf("paths = %q %q %q", c.ConfigPath, c.InputDir, c.OutputDir)
				}
				if c.LogLevel != "debug" || c.LogFormat != "json" {
					t.Errorf("log = %q %q", c.LogLevel, c.LogFormat)
				}
				if c.Debounce != "1s" || c.MetricsAddr != ":9090" || c.MetricsFile != "docpipe.prom" {
					t.Errorf("watch/metrics = %q %q %q", c.Debounce, c.MetricsAddr, c.MetricsFile)
				}
				if len(c.Unknown) != 0 || len(c.Invalid) != 0 {
					t.Errorf("unexpected warnings: unknown=%v invalid=%v", c.Unknown, c.Invalid)
				}
			},
		},
		{
			name: "lists split on commas",
			vars: map[string]string{
				"DOCPIPE_DIRECTIVE_KINDS": "note, tip,,aside ",
				"DOCPIPE_LANGUAGES":       "go,python",
			},
			check: func(t *testing.T, c *envConfig) {
				if !reflect.DeepEqual(c.Kinds, []string{"note", "tip", "aside"}) {
					t.Errorf("Kinds = %v", c.Kinds)
				}
				if !reflect.DeepEqual(c.Languages, []string{"go", "python"}) {
					t.Errorf("Languages = %v", c.Languages)
				}
			},
		},
		{
			name: "valid workers",
			vars: map[string]string{"DOCPIPE_WORKERS": "4"},
			check: func(t *testing.T, c *envConfig) {
				if c.Workers != 4 {
					t.Errorf("Workers = %d, want 4", c.Workers)
				}
			},
		},
		{
			name: "invalid workers reported",
			vars: map[string]string{"DOCPIPE_WORKERS": "many"},
			check: func(t *testing.T, c *envConfig) {
				if c.Workers != 0 {
					t.Errorf("Workers = %d, want 0", c.Workers)
				}
				if !reflect.DeepEqual(c.Invalid, []string{"DOCPIPE_WORKERS"}) {
					t.Errorf("Invalid = %v", c.Invalid)
				}
			},
		},
		{
			name: "unknown variables sorted",
			vars: map[string]string{
				"DOCPIPE_WORKRES": "2",
				"DOCPIPE_OUTPUT":  "x",
				"OTHER_VAR":       "ignored",
			},
			check: func(t *testing.T, c *envConfig) {
				if !reflect.DeepEqual(c.Unknown, []string{"DOCPIPE_OUTPUT", "DOCPIPE_WORKRES"}) {
					t.Errorf("Unknown = %v", c.Unknown)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.check(t, loadEnvConfig(envSourceFor(tt.vars, nil)))
		})
	}
}

// ---------------------------------------------------------------------------
// TestEnvSource_Dotenv - Process environment wins over the dotenv file
// ---------------------------------------------------------------------------

func TestEnvSource_Dotenv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ci.env")
	content := "DOCPIPE_OUTPUT_DIR=from-file\nDOCPIPE_INPUT_DIR=\"docs\"\n# comment\nDOCPIPE_TYPO=1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	env, _, _ := newTestEnv(map[string]string{"DOCPIPE_OUTPUT_DIR": "from-env"})
	src, err := newEnvSource(env, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := loadEnvConfig(src)
	if cfg.OutputDir != "from-env" {
		t.Errorf("OutputDir = %q, want from-env", cfg.OutputDir)
	}
	if cfg.InputDir != "docs" {
		t.Errorf("InputDir = %q, want docs", cfg.InputDir)
	}
	if !reflect.DeepEqual(cfg.Unknown, []string{"DOCPIPE_TYPO"}) {
		t.Errorf("Unknown = %v, want [DOCPIPE_TYPO]", cfg.Unknown)
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := newEnvSource(env, filepath.Join(dir, "absent.env"))
		if !errors.Is(err, ErrEnvFile) {
			t.Errorf("error = %v, want ErrEnvFile", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want wrapping os.ErrNotExist", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env values replace config file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("set values override", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.Dir = "from-config"
		cfg.Build.Workers = 2

		applyEnvConfig(&envConfig{
			OutputDir: "from-env",
			Workers:   8,
			LogLevel:  "warn",
			Kinds:     []string{"aside"},
			Languages: []string{"go"},
		}, cfg)

		if cfg.Output.Dir != "from-env" {
			t.Errorf("Output.Dir = %q, want from-env", cfg.Output.Dir)
		}
		if cfg.Build.Workers != 8 {
			t.Errorf("Build.Workers = %d, want 8", cfg.Build.Workers)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
		}
		if !reflect.DeepEqual(cfg.Directives.Kinds, []string{"aside"}) {
			t.Errorf("Directives.Kinds = %v", cfg.Directives.Kinds)
		}
		if !reflect.DeepEqual(cfg.Highlight.Languages, []string{"go"}) {
			t.Errorf("Highlight.Languages = %v", cfg.Highlight.Languages)
		}
	})

	t.Run("unset values keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Input.Dir = "content"
		cfg.Watch.Debounce = "1s"

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Input.Dir != "content" {
			t.Errorf("Input.Dir = %q, want content", cfg.Input.Dir)
		}
		if cfg.Watch.Debounce != "1s" {
			t.Errorf("Watch.Debounce = %q, want 1s", cfg.Watch.Debounce)
		}
	})
}

// ---------------------------------------------------------------------------
// TestSplitList - Comma-separated values
// ---------------------------------------------------------------------------

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ", nil},
		{"go", []string{"go"}},
		{"go, rust ,", []string{"go", "rust"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
