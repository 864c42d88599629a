package pipeline

import (
	"strconv"
	"strings"

	"github.com/alnah/go-docpipe/ast"
)

// TOC depth defaults: skip the page title, stop below h3.
const (
	DefaultTOCMinDepth = 2
	DefaultTOCMaxDepth = 3
)

// TOCEntry is one heading in the table of contents.
type TOCEntry struct {
	Level  int    `json:"level"`
	Depth  int    `json:"depth"`
	Number string `json:"number"`
	Text   string `json:"text"`
	Slug   string `json:"slug"`
}

// TOCBuilder collects slugged headings into a table of contents.
type TOCBuilder interface {
	BuildTOC(root *ast.Node) []TOCEntry
}

// NumberedTOC numbers headings hierarchically ("1.", "1.1.", ...). The
// shallowest heading seen becomes depth 1 and skipped levels nest one step
// at a time. Headings inside directives are excluded.
type NumberedTOC struct {
	MinDepth int
	MaxDepth int
}

func (t NumberedTOC) BuildTOC(root *ast.Node) []TOCEntry {
	minDepth, maxDepth := t.MinDepth, t.MaxDepth
	if minDepth <= 0 {
		minDepth = DefaultTOCMinDepth
	}
	if maxDepth <= 0 {
		maxDepth = DefaultTOCMaxDepth
	}

	var entries []TOCEntry
	numbering := &numberingState{}
	_ = ast.Walk(root, func(n *ast.Node) (ast.WalkStatus, error) {
		switch n.Kind {
		case ast.KindDirective, ast.KindBlockquote, ast.KindList, ast.KindTable:
			return ast.WalkSkipChildren, nil
		case ast.KindHeading:
			if n.Slug != "" && n.Level >= minDepth && n.Level <= maxDepth {
				number, depth := numbering.next(n.Level)
				entries = append(entries, TOCEntry{
					Level:  n.Level,
					Depth:  depth,
					Number: number,
					Text:   strings.TrimSpace(ast.TextContent(n)),
					Slug:   n.Slug,
				})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return entries
}

// numberingState tracks hierarchical counters across headings.
type numberingState struct {
	counters  [6]int
	minLevel  int
	lastDepth int
}

func (s *numberingState) next(level int) (string, int) {
	if s.minLevel == 0 || level < s.minLevel {
		s.minLevel = level
	}

	depth := level - s.minLevel + 1
	if s.lastDepth > 0 && depth > s.lastDepth+1 {
		depth = s.lastDepth + 1
	}
	for i := depth; i < len(s.counters); i++ {
		s.counters[i] = 0
	}
	s.counters[depth-1]++
	s.lastDepth = depth

	parts := make([]string, depth)
	for i := range parts {
		parts[i] = strconv.Itoa(s.counters[i])
	}
	return strings.Join(parts, ".") + ".", depth
}
