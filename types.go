package docpipe

import (
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-docpipe/ast"
)

// Document is one source document.
type Document struct {
	// Source identifies the document in errors and reports. When it is a
	// slash-separated path relative to the content root, relative links to
	// other documents are rewritten to their routes.
	Source  string
	URLPath string
	Content string
}

// Result is the finished output for one document.
type Result struct {
	Source      string         `json:"source"`
	URLPath     string         `json:"route"`
	Metadata    map[string]any `json:"metadata"`
	Tree        *ast.Node      `json:"tree"`
	TOC         []TOCEntry     `json:"toc,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

// TOCEntry is one heading in a document's table of contents.
type TOCEntry struct {
	Level  int    `json:"level"`
	Depth  int    `json:"depth"`
	Number string `json:"number"`
	Text   string `json:"text"`
	Slug   string `json:"slug"`
}

// Recorder receives pipeline measurements. internal/metrics provides the
// Prometheus implementation used by the CLI.
type Recorder interface {
	ObservePassDuration(pass string, d time.Duration)
	ObserveDocumentDuration(d time.Duration)
	IncDocumentOutcome(outcome string)
	IncDiagnostic(code string)
	ObserveBatchDuration(d time.Duration)
	SetWorkers(n int)
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

// Limits enforced by NewPipeline.
const (
	MaxDirectiveDepthLimit = 64
	maxHeadingLevel        = 6
)

var directiveKindPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

type pipelineConfig struct {
	kinds       []string
	maxDepth    int
	languages   []string
	tocMinDepth int
	tocMaxDepth int
	logger      zerolog.Logger
	recorder    Recorder
}

// WithDirectiveKinds replaces the recognized callout kinds.
func WithDirectiveKinds(kinds ...string) Option {
	return func(c *pipelineConfig) {
		c.kinds = append([]string(nil), kinds...)
	}
}

// WithMaxDirectiveDepth sets the deepest allowed directive nesting.
func WithMaxDirectiveDepth(n int) Option {
	return func(c *pipelineConfig) {
		c.maxDepth = n
	}
}

// WithLanguages restricts highlighting to the given languages. Fences in
// other languages are left unstyled.
func WithLanguages(langs ...string) Option {
	return func(c *pipelineConfig) {
		c.languages = append([]string(nil), langs...)
	}
}

// WithTOCDepth sets the heading levels collected into the table of
// contents.
func WithTOCDepth(minLevel, maxLevel int) Option {
	return func(c *pipelineConfig) {
		c.tocMinDepth = minLevel
		c.tocMaxDepth = maxLevel
	}
}

// WithLogger sets the logger for per-pass debug events and diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = l
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *pipelineConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

func (c *pipelineConfig) validate() error {
	if c.maxDepth < 1 || c.maxDepth > MaxDirectiveDepthLimit {
		return fmt.Errorf("%w: directive depth %d (must be 1-%d)", ErrInvalidOption, c.maxDepth, MaxDirectiveDepthLimit)
	}
	if len(c.kinds) == 0 {
		return fmt.Errorf("%w: no directive kinds", ErrInvalidOption)
	}
	for _, k := range c.kinds {
		if !directiveKindPattern.MatchString(k) {
			return fmt.Errorf("%w: directive kind %q (lower-case letters, digits, '-' and '_')", ErrInvalidOption, k)
		}
	}
	if c.tocMinDepth < 1 || c.tocMaxDepth > maxHeadingLevel || c.tocMinDepth > c.tocMaxDepth {
		return fmt.Errorf("%w: TOC depth %d-%d (must be within 1-%d)", ErrInvalidOption, c.tocMinDepth, c.tocMaxDepth, maxHeadingLevel)
	}
	return nil
}
