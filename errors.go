package docpipe

import (
	"errors"

	"github.com/alnah/go-docpipe/internal/pipeline"
)

// Sentinel errors. Fatal document errors arrive wrapped in *DocumentError;
// use errors.Is to classify them.
var (
	ErrMalformedFrontMatter    = pipeline.ErrMalformedFrontMatter
	ErrUnknownDirectiveKind    = pipeline.ErrUnknownDirectiveKind
	ErrUnbalancedDirective     = pipeline.ErrUnbalancedDirective
	ErrDirectiveNestingTooDeep = pipeline.ErrDirectiveNestingTooDeep
	ErrTreeParse               = pipeline.ErrTreeParse

	// Recoverable: only ever reported through Diagnostic.
	ErrInvalidMetaRange  = pipeline.ErrInvalidMetaRange
	ErrHighlightFallback = pipeline.ErrHighlightFallback

	// ErrUnknownLanguage arrives wrapped in ErrInvalidOption from NewPipeline.
	ErrUnknownLanguage = pipeline.ErrUnknownLanguage

	ErrInvalidOption = errors.New("invalid option")
	ErrInternal      = errors.New("internal error")
)

// DocumentError is a fatal error for one document.
type DocumentError struct {
	Source string
	Err    error
}

func (e *DocumentError) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return e.Source + ": " + e.Err.Error()
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Diagnostic codes.
const (
	CodeInvalidMetaRange  = pipeline.CodeInvalidMetaRange
	CodeHighlightFallback = pipeline.CodeHighlightFallback
)

// Diagnostic is a recoverable problem. The document still produced a tree.
type Diagnostic struct {
	Source  string `json:"source,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Err     error  `json:"-"`
}

func (d Diagnostic) Error() string {
	if d.Source == "" {
		return d.Message
	}
	return d.Source + ": " + d.Message
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
