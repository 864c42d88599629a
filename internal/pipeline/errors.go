package pipeline

import "errors"

// Sentinel errors. Fatal ones abort the document; ErrInvalidMetaRange and
// ErrHighlightFallback only ever surface inside a Diagnostic.
var (
	ErrMalformedFrontMatter    = errors.New("malformed front matter")
	ErrUnknownDirectiveKind    = errors.New("unknown directive kind")
	ErrUnbalancedDirective     = errors.New("unbalanced directive")
	ErrDirectiveNestingTooDeep = errors.New("directive nesting too deep")
	ErrInvalidMetaRange        = errors.New("invalid meta range")
	ErrHighlightFallback       = errors.New("highlight fallback")
	ErrUnknownLanguage         = errors.New("unknown highlight language")
)

// Diagnostic codes.
const (
	CodeInvalidMetaRange  = "InvalidMetaRange"
	CodeHighlightFallback = "HighlightFallback"
)

// Diagnostic is a recoverable problem found by a pass. The document still
// produces a tree.
type Diagnostic struct {
	Code    string
	Message string
	Line    int
	Err     error
}

func (d Diagnostic) Error() string {
	return d.Message
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
