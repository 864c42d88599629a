package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-docpipe/internal/config"
	"github.com/alnah/go-docpipe/internal/fileutil"
)

const envPrefix = "DOCPIPE_"

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

// ErrEnvFile indicates the dotenv file could not be read or parsed.
var ErrEnvFile = errors.New("failed to load env file")

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string   // DOCPIPE_CONFIG: config file name or path
	InputDir    string   // DOCPIPE_INPUT_DIR: content root
	OutputDir   string   // DOCPIPE_OUTPUT_DIR: output root
	Workers     int      // DOCPIPE_WORKERS: parallel workers
	LogLevel    string   // DOCPIPE_LOG_LEVEL: trace, debug, info, warn, error
	LogFormat   string   // DOCPIPE_LOG_FORMAT: console, json
	Debounce    string   // DOCPIPE_DEBOUNCE: watch quiet period
	MetricsAddr string   // DOCPIPE_METRICS_ADDR: watch /metrics listen address
	MetricsFile string   // DOCPIPE_METRICS_FILE: textfile written after build
	Kinds       []string // DOCPIPE_DIRECTIVE_KINDS: comma-separated callout kinds
	Languages   []string // DOCPIPE_LANGUAGES: comma-separated highlight languages

	// Invalid lists variables whose values could not be parsed.
	Invalid []string
	// Unknown lists DOCPIPE_* names that are not recognized.
	Unknown []string
}

// knownEnvVars lists valid DOCPIPE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCPIPE_CONFIG":          true,
	"DOCPIPE_INPUT_DIR":       true,
	"DOCPIPE_OUTPUT_DIR":      true,
	"DOCPIPE_WORKERS":         true,
	"DOCPIPE_LOG_LEVEL":       true,
	"DOCPIPE_LOG_FORMAT":      true,
	"DOCPIPE_DEBOUNCE":        true,
	"DOCPIPE_METRICS_ADDR":    true,
	"DOCPIPE_METRICS_FILE":    true,
	"DOCPIPE_DIRECTIVE_KINDS": true,
	"DOCPIPE_LANGUAGES":       true,
}

// envSource resolves variables from the process environment first and
// falls back to values read from a dotenv file. The process environment
// is never modified.
type envSource struct {
	lookup  func(string) (string, bool)
	environ func() []string
	dotenv  map[string]string
}

// newEnvSource reads the dotenv file named by path. An empty path loads
// ./.env when it exists and nothing otherwise.
func newEnvSource(env *Environment, path string) (*envSource, error) {
	src := &envSource{lookup: env.LookupEnv, environ: env.Environ}

	if path == "" {
		if !fileutil.FileExists(defaultEnvFile) {
			return src, nil
		}
		path = defaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEnvFile, path, err)
	}
	src.dotenv = values
	return src, nil
}

func (s *envSource) get(key string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return s.dotenv[key]
}

// names returns every DOCPIPE_* name visible through s, sorted.
func (s *envSource) names() []string {
	seen := make(map[string]bool)
	for _, kv := range s.environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, envPrefix) {
			seen[name] = true
		}
	}
	for name := range s.dotenv {
		if strings.HasPrefix(name, envPrefix) {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized DOCPIPE_* values.
func loadEnvConfig(src *envSource) *envConfig {
	cfg := &envConfig{
		ConfigPath:  src.get("DOCPIPE_CONFIG"),
		InputDir:    src.get("DOCPIPE_INPUT_DIR"),
		OutputDir:   src.get("DOCPIPE_OUTPUT_DIR"),
		LogLevel:    src.get("DOCPIPE_LOG_LEVEL"),
		LogFormat:   src.get("DOCPIPE_LOG_FORMAT"),
		Debounce:    src.get("DOCPIPE_DEBOUNCE"),
		MetricsAddr: src.get("DOCPIPE_METRICS_ADDR"),
		MetricsFile: src.get("DOCPIPE_METRICS_FILE"),
		Kinds:       splitList(src.get("DOCPIPE_DIRECTIVE_KINDS")),
		Languages:   splitList(src.get("DOCPIPE_LANGUAGES")),
	}

	if workers := src.get("DOCPIPE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		} else {
			cfg.Invalid = append(cfg.Invalid, "DOCPIPE_WORKERS")
		}
	}

	for _, name := range src.names() {
		if !knownEnvVars[name] {
			cfg.Unknown = append(cfg.Unknown, name)
		}
	}

	return cfg
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applyEnvConfig applies environment variable values to config.
// A set variable replaces the config file value. Flags are applied
// afterwards, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.Dir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Workers > 0 {
		cfg.Build.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.Debounce != "" {
		cfg.Watch.Debounce = env.Debounce
	}
	if env.MetricsAddr != "" {
		cfg.Metrics.Addr = env.MetricsAddr
	}
	if env.MetricsFile != "" {
		cfg.Metrics.File = env.MetricsFile
	}
	if len(env.Kinds) > 0 {
		cfg.Directives.Kinds = env.Kinds
	}
	if len(env.Languages) > 0 {
		cfg.Highlight.Languages = env.Languages
	}
}
