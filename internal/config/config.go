package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-docpipe/internal/fileutil"
	"github.com/alnah/go-docpipe/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxPatternLength  = 256  // One ignore glob
	MaxPatterns       = 100  // Ignore globs per config
	MaxKindLength     = 50   // "warning", "deprecated"
	MaxKinds          = 50   // Directive kinds per config
	MaxLanguageLength = 50   // "typescript", "objective-c"
	MaxDirectiveDepth = 64   // Matches the pipeline limit
	MaxWorkers        = 32   // Matches docpipe.MaxWorkers
	MaxAddrLength     = 256  // "127.0.0.1:9090"
	MinDebounce       = 10 * time.Millisecond
	MaxDebounce       = time.Minute
)

// Defaults applied by DefaultConfig.
const (
	DefaultDirectiveDepth = 8
	DefaultTOCMinDepth    = 2
	DefaultTOCMaxDepth    = 3
	DefaultDebounce       = "200ms"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
)

var kindPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Config holds all configuration for a documentation build.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Routes     RoutesConfig     `yaml:"routes"`
	Directives DirectivesConfig `yaml:"directives"`
	Highlight  HighlightConfig  `yaml:"highlight"`
	TOC        TOCConfig        `yaml:"toc"`
	Build      BuildConfig      `yaml:"build"`
	Watch      WatchConfig      `yaml:"watch"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// InputConfig defines the content root.
type InputConfig struct {
	Dir string `yaml:"dir"` // Content root (empty = current directory)
}

// OutputConfig defines where processed trees are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // Output root (empty = "dist")
	Pretty bool   `yaml:"pretty"` // Indent JSON output
}

// RoutesConfig defines route discovery options.
type RoutesConfig struct {
	Ignore []string `yaml:"ignore"` // Globs relative to the content root; "**" spans folders
}

// DirectivesConfig defines the callout grammar.
type DirectivesConfig struct {
	Kinds    []string `yaml:"kinds"`    // Empty = note, tip, info, warning, danger, caution
	MaxDepth int      `yaml:"maxDepth"` // 1-64
}

// HighlightConfig defines syntax highlighting options.
type HighlightConfig struct {
	Languages []string `yaml:"languages"` // Empty = every Chroma lexer
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	MinDepth int `yaml:"minDepth"` // 1-6, default 2
	MaxDepth int `yaml:"maxDepth"` // 1-6, default 3
}

// BuildConfig defines batch options.
type BuildConfig struct {
	Workers int `yaml:"workers"` // 0 = auto
}

// WatchConfig defines watch mode options.
type WatchConfig struct {
	Debounce string `yaml:"debounce"` // Go duration, e.g. "200ms"
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// MetricsConfig defines Prometheus exposition.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Listen address for watch mode (empty = disabled)
	File string `yaml:"file"` // Text file written after each build (empty = disabled)
}

// DebounceDuration returns the parsed watch debounce. Call Validate first.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		d, _ = time.ParseDuration(DefaultDebounce)
	}
	return d
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.dir", c.Input.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}

	if len(c.Routes.Ignore) > MaxPatterns {
		return fmt.Errorf("%w: routes.ignore: %d patterns (max %d)", ErrInvalidValue, len(c.Routes.Ignore), MaxPatterns)
	}
	for i, p := range c.Routes.Ignore {
		if err := validateFieldLength(fmt.Sprintf("routes.ignore[%d]", i), p, MaxPatternLength); err != nil {
			return err
		}
	}

	if len(c.Directives.Kinds) > MaxKinds {
		return fmt.Errorf("%w: directives.kinds: %d kinds (max %d)", ErrInvalidValue, len(c.Directives.Kinds), MaxKinds)
	}
	for i, k := range c.Directives.Kinds {
		field := fmt.Sprintf("directives.kinds[%d]", i)
		if err := validateFieldLength(field, k, MaxKindLength); err != nil {
			return err
		}
		if !kindPattern.MatchString(k) {
			return fmt.Errorf("%w: %s: %q (lower-case letters, digits, '-' and '_')", ErrInvalidValue, field, k)
		}
	}
	if c.Directives.MaxDepth < 1 || c.Directives.MaxDepth > MaxDirectiveDepth {
		return fmt.Errorf("%w: directives.maxDepth: must be between 1 and %d, got %d", ErrInvalidValue, MaxDirectiveDepth, c.Directives.MaxDepth)
	}

	for i, l := range c.Highlight.Languages {
		if err := validateFieldLength(fmt.Sprintf("highlight.languages[%d]", i), l, MaxLanguageLength); err != nil {
			return err
		}
	}

	if c.TOC.MinDepth < 1 || c.TOC.MinDepth > 6 {
		return fmt.Errorf("%w: toc.minDepth: must be between 1 and 6, got %d", ErrInvalidValue, c.TOC.MinDepth)
	}
	if c.TOC.MaxDepth < c.TOC.MinDepth || c.TOC.MaxDepth > 6 {
		return fmt.Errorf("%w: toc.maxDepth: must be between toc.minDepth and 6, got %d", ErrInvalidValue, c.TOC.MaxDepth)
	}

	if c.Build.Workers < 0 || c.Build.Workers > MaxWorkers {
		return fmt.Errorf("%w: build.workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Build.Workers)
	}

	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("%w: watch.debounce: %v", ErrInvalidValue, err)
	}
	if d < MinDebounce || d > MaxDebounce {
		return fmt.Errorf("%w: watch.debounce: must be between %s and %s, got %s", ErrInvalidValue, MinDebounce, MaxDebounce, d)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil || c.Log.Level == "" {
		return fmt.Errorf("%w: log.level: unknown level %q", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
		// valid
	default:
		return fmt.Errorf("%w: log.format: invalid value %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	if err := validateFieldLength("metrics.addr", c.Metrics.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("metrics.file", c.Metrics.File, MaxPathLength); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input:      InputConfig{Dir: ""},
		Output:     OutputConfig{Dir: ""},
		Directives: DirectivesConfig{MaxDepth: DefaultDirectiveDepth},
		TOC:        TOCConfig{MinDepth: DefaultTOCMinDepth, MaxDepth: DefaultTOCMaxDepth},
		Watch:      WatchConfig{Debounce: DefaultDebounce},
		Log:        LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name in lookup
// order: the current directory, then ~/.config/go-docpipe/, each with
// .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-docpipe", name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
