package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/alnah/go-docpipe/ast"
)

// Directive defaults.
const (
	DefaultMaxDirectiveDepth = 8
	directiveFence           = ":::"
)

// DefaultDirectiveKinds lists the callout kinds recognized out of the box.
var DefaultDirectiveKinds = []string{"note", "tip", "info", "warning", "danger", "caution"}

// DirectiveParser folds directive marker nodes into directive containers.
type DirectiveParser interface {
	FoldDirectives(root *ast.Node) error
}

// CalloutParser pairs ::: open and close markers with an explicit stack.
// Markers are matched per child sequence, so a directive cannot start in
// one container and end in another.
type CalloutParser struct {
	kinds    map[string]struct{}
	maxDepth int
}

// NewCalloutParser returns a parser for the given kinds. Kinds are matched
// case-insensitively; an empty list means DefaultDirectiveKinds and a
// non-positive depth means DefaultMaxDirectiveDepth.
func NewCalloutParser(kinds []string, maxDepth int) *CalloutParser {
	if len(kinds) == 0 {
		kinds = DefaultDirectiveKinds
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDirectiveDepth
	}
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[strings.ToLower(k)] = struct{}{}
	}
	return &CalloutParser{kinds: set, maxDepth: maxDepth}
}

// Kinds returns the recognized kinds in sorted order.
func (p *CalloutParser) Kinds() []string {
	out := make([]string, 0, len(p.kinds))
	for k := range p.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MaxDepth returns the deepest allowed nesting.
func (p *CalloutParser) MaxDepth() int {
	return p.maxDepth
}

type container struct {
	node  *ast.Node
	depth int // directives enclosing node
}

// FoldDirectives rewrites root in place. On error the tree is left
// partially folded and must be discarded.
func (p *CalloutParser) FoldDirectives(root *ast.Node) error {
	work := []container{{node: root}}
	for len(work) > 0 {
		c := work[len(work)-1]
		work = work[:len(work)-1]

		nested, err := p.fold(c)
		if err != nil {
			return err
		}
		work = append(work, nested...)
	}
	return nil
}

// fold rebuilds the children of one container and returns the block
// containers found among them.
func (p *CalloutParser) fold(c container) ([]container, error) {
	if !hasMarkerOrContainer(c.node) {
		return nil, nil
	}

	var (
		nested []container
		stack  []*ast.Node
		out    = make([]*ast.Node, 0, len(c.node.Children))
	)
	appendTo := func(n *ast.Node) {
		if len(stack) > 0 {
			stack[len(stack)-1].AppendChild(n)
			return
		}
		out = append(out, n)
	}

	for _, child := range c.node.Children {
		if child.Kind != ast.KindDirectiveMarker {
			appendTo(child)
			if isBlockContainer(child.Kind) {
				nested = append(nested, container{node: child, depth: c.depth + len(stack)})
			}
			continue
		}

		m := parseMarker(child.Value)
		if m.close {
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: closing %q at line %d has no open directive",
					ErrUnbalancedDirective, child.Value, child.Line)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		depth := c.depth + len(stack) + 1
		if depth > p.maxDepth {
			return nil, fmt.Errorf("%w: %q at line %d is %d levels deep (max %d)",
				ErrDirectiveNestingTooDeep, child.Value, child.Line, depth, p.maxDepth)
		}
		if _, ok := p.kinds[m.kind]; !ok {
			return nil, fmt.Errorf("%w: %q at line %d", ErrUnknownDirectiveKind, child.Value, child.Line)
		}

		d := &ast.Node{Kind: ast.KindDirective, Name: m.kind, Level: depth, Line: child.Line, Attrs: m.attrs}
		appendTo(d)
		stack = append(stack, d)
	}

	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return nil, fmt.Errorf("%w: %q directive opened at line %d is never closed",
			ErrUnbalancedDirective, open.Name, open.Line)
	}

	c.node.Children = out
	return nested, nil
}

func hasMarkerOrContainer(n *ast.Node) bool {
	for _, child := range n.Children {
		if child.Kind == ast.KindDirectiveMarker || isBlockContainer(child.Kind) {
			return true
		}
	}
	return false
}

func isBlockContainer(k ast.Kind) bool {
	switch k {
	case ast.KindBlockquote, ast.KindList, ast.KindListItem:
		return true
	}
	return false
}

type marker struct {
	close bool
	kind  string
	attrs map[string]string
}

// parseMarker reads ":::kind[label]{attrs}", ":::kind attrs" or a bare
// ":::" close. The kind is lower-cased; an empty kind on an open marker is
// left for the caller to reject.
func parseMarker(line string) marker {
	rest := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), ":"))
	if rest == "" {
		return marker{close: true}
	}

	end := strings.IndexFunc(rest, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	})
	if end < 0 {
		end = len(rest)
	}
	m := marker{kind: strings.ToLower(rest[:end])}
	rest = rest[end:]

	var label string
	if strings.HasPrefix(rest, "[") {
		if idx := strings.IndexByte(rest, ']'); idx > 0 {
			label = rest[1:idx]
			rest = rest[idx+1:]
		}
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") && strings.HasSuffix(rest, "}") {
		rest = rest[1 : len(rest)-1]
	}

	attrs := make(map[string]string)
	if label = strings.TrimSpace(label); label != "" {
		attrs[ast.AttrTitle] = label
	}
	for _, a := range tokenizeAttributes(rest) {
		switch {
		case a.Bare && strings.HasPrefix(a.Key, "#") && len(a.Key) > 1:
			attrs[ast.AttrID] = a.Key[1:]
		case a.Bare && strings.HasPrefix(a.Key, ".") && len(a.Key) > 1:
			if cls := attrs["class"]; cls != "" {
				attrs["class"] = cls + " " + a.Key[1:]
			} else {
				attrs["class"] = a.Key[1:]
			}
		case a.Bare:
			attrs[a.Key] = "true"
		default:
			attrs[a.Key] = a.Value
		}
	}
	if len(attrs) > 0 {
		m.attrs = attrs
	}
	return m
}
