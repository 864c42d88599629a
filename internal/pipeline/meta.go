package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-docpipe/ast"
)

// Recognized fence meta keys.
const (
	MetaFilename  = "filename"
	MetaHighlight = "highlight"
)

var metaAliases = map[string]string{
	"filename":  MetaFilename,
	"file":      MetaFilename,
	"title":     MetaFilename,
	"highlight": MetaHighlight,
	"hl":        MetaHighlight,
	"line":      MetaHighlight,
	"lines":     MetaHighlight,
}

// MetaPropagator parses fence meta strings into structured fields.
type MetaPropagator interface {
	PropagateMeta(root *ast.Node) []Diagnostic
}

// FenceMeta copies recognized keys to Meta and HighlightLines. Unknown
// keys are kept verbatim in Meta and unknown bare flags are stored as
// "true". A bad or missing highlight range is dropped with a diagnostic;
// the fence is kept. A bare filename key is dropped.
type FenceMeta struct{}

func (FenceMeta) PropagateMeta(root *ast.Node) []Diagnostic {
	var diags []Diagnostic
	ast.Inspect(root, ast.KindCodeFence, func(n *ast.Node) {
		if n.RawMeta == "" {
			return
		}
		diags = append(diags, propagate(n)...)
	})
	return diags
}

func propagate(n *ast.Node) []Diagnostic {
	meta := make(map[string]string)
	var (
		diags []Diagnostic
		lines []int
	)
	lineCount := countLines(n.Value)

	for _, a := range tokenizeAttributes(n.RawMeta) {
		key, value := a.Key, a.Value
		alias := metaAliases[strings.ToLower(key)]
		switch {
		case a.Bare && isBraceRange(key):
			alias, value = MetaHighlight, key[1:len(key)-1]
		case a.Bare && alias == MetaFilename:
			// A filename without a value names nothing.
			continue
		case a.Bare && alias == "":
			meta[key] = "true"
			continue
		}

		// A bare highlight key reaches here with an empty range.
		switch alias {
		case MetaFilename:
			meta[MetaFilename] = value
		case MetaHighlight:
			parsed, err := ParseLineRanges(value, lineCount)
			if err != nil {
				delete(meta, MetaHighlight)
				lines = nil
				diags = append(diags, Diagnostic{
					Code:    CodeInvalidMetaRange,
					Message: fmt.Sprintf("code fence at line %d: %v", n.Line, err),
					Line:    n.Line,
					Err:     err,
				})
				continue
			}
			lines = parsed
			meta[MetaHighlight] = FormatLineRanges(parsed)
		default:
			meta[key] = value
		}
	}

	if len(meta) > 0 {
		n.Meta = meta
	}
	n.HighlightLines = lines
	return diags
}

func isBraceRange(s string) bool {
	return len(s) > 2 && s[0] == '{' && s[len(s)-1] == '}'
}

// countLines returns the number of lines in code, ignoring one trailing
// newline.
func countLines(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(code, "\n"), "\n") + 1
}

// ParseLineRanges parses "2-4,7" into sorted, de-duplicated line numbers.
// Every number must fall within 1..limit.
func ParseLineRanges(s string, limit int) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty range", ErrInvalidMetaRange)
	}

	set := make(map[int]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isSpan := strings.Cut(part, "-")

		from, err := parseLineNumber(lo, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidMetaRange, s, err)
		}
		to := from
		if isSpan {
			if to, err = parseLineNumber(hi, limit); err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrInvalidMetaRange, s, err)
			}
			if to < from {
				return nil, fmt.Errorf("%w: %q: %d-%d is reversed", ErrInvalidMetaRange, s, from, to)
			}
		}
		for i := from; i <= to; i++ {
			set[i] = struct{}{}
		}
	}

	lines := make([]int, 0, len(set))
	for l := range set {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines, nil
}

func parseLineNumber(s string, limit int) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a line number", s)
	}
	if n < 1 || n > limit {
		return 0, fmt.Errorf("line %d outside 1..%d", n, limit)
	}
	return n, nil
}

// FormatLineRanges renders sorted line numbers back to the compact form,
// collapsing consecutive runs.
func FormatLineRanges(lines []int) string {
	var b strings.Builder
	for i := 0; i < len(lines); {
		j := i
		for j+1 < len(lines) && lines[j+1] == lines[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(lines[i]))
		if j > i {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(lines[j]))
		}
		i = j + 1
	}
	return b.String()
}
