package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-docpipe/ast"
)

// ErrTreeParse indicates the Markdown parser failed.
var ErrTreeParse = errors.New("markdown parse failed")

// TreeParser turns a Markdown body into a docpipe tree.
type TreeParser interface {
	Parse(ctx context.Context, body string) (*ast.Node, error)
}

// GoldmarkParser parses CommonMark plus GFM tables, strikethrough, task
// lists and autolinks. Lines starting with ::: become DirectiveMarker
// leaves for the directive pass.
type GoldmarkParser struct {
	md goldmark.Markdown
}

func NewGoldmarkParser() *GoldmarkParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			directiveMarkers{},
		),
	)
	return &GoldmarkParser{md: md}
}

// Parse converts body. Goldmark has no context support, so cancellation
// only stops the wait, not the parse itself.
func (p *GoldmarkParser) Parse(ctx context.Context, body string) (*ast.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		root *ast.Node
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrTreeParse, r)}
			}
		}()
		source := []byte(body)
		doc := p.md.Parser().Parse(text.NewReader(source))
		c := newTreeConverter(source)
		done <- result{root: c.convert(doc)}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.root, r.err
	}
}

type convertFrame struct {
	src gmast.Node
	dst *ast.Node
}

// treeConverter maps a Goldmark tree onto ast nodes. Conversion is
// iterative: each frame appends the converted children of src to dst.
type treeConverter struct {
	source     []byte
	lineStarts []int
	stack      []convertFrame
}

func newTreeConverter(source []byte) *treeConverter {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &treeConverter{source: source, lineStarts: starts}
}

// line returns the 1-based line containing offset.
func (c *treeConverter) line(offset int) int {
	return sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > offset })
}

func (c *treeConverter) firstLine(n gmast.Node) int {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return c.line(lines.At(0).Start)
}

func (c *treeConverter) convert(doc gmast.Node) *ast.Node {
	root := ast.NewNode(ast.KindDocument)
	c.stack = append(c.stack[:0], convertFrame{src: doc, dst: root})
	for len(c.stack) > 0 {
		f := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		c.appendChildren(f.src, f.dst)
	}
	return root
}

// appendChildren converts the children of src into dst. Tight list
// paragraphs (TextBlock) and unsupported wrappers are flattened into dst.
func (c *treeConverter) appendChildren(src gmast.Node, dst *ast.Node) {
	for child := src.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*gmast.Text); ok {
			c.appendText(dst, string(t.Segment.Value(c.source)), t.SoftLineBreak(), t.HardLineBreak())
			continue
		}
		if s, ok := child.(*gmast.String); ok {
			c.appendText(dst, string(s.Value), false, false)
			continue
		}

		n, descend := c.node(child)
		if n == nil {
			c.appendChildren(child, dst)
			continue
		}
		dst.AppendChild(n)
		if descend && child.HasChildren() {
			c.stack = append(c.stack, convertFrame{src: child, dst: n})
		}
	}
}

// appendText merges adjacent text runs, which Goldmark splits at every
// potential delimiter.
func (c *treeConverter) appendText(dst *ast.Node, value string, soft, hard bool) {
	if soft {
		value += "\n"
	}
	if last := len(dst.Children) - 1; last >= 0 && dst.Children[last].Kind == ast.KindText {
		dst.Children[last].Value += value
	} else if value != "" {
		dst.AppendChild(ast.NewText(value))
	}
	if hard {
		dst.AppendChild(ast.NewNode(ast.KindLineBreak))
	}
}

// node converts one Goldmark node. A nil result means the node is a
// transparent wrapper whose children belong to the parent.
func (c *treeConverter) node(src gmast.Node) (*ast.Node, bool) {
	switch n := src.(type) {
	case *gmast.Paragraph:
		return &ast.Node{Kind: ast.KindParagraph, Line: c.firstLine(n)}, true
	case *gmast.TextBlock:
		return nil, true
	case *gmast.Heading:
		return &ast.Node{Kind: ast.KindHeading, Level: n.Level, Line: c.firstLine(n)}, true
	case *gmast.ThematicBreak:
		return ast.NewNode(ast.KindThematicBreak), false
	case *gmast.FencedCodeBlock:
		return c.fencedCode(n), false
	case *gmast.CodeBlock:
		return &ast.Node{Kind: ast.KindCodeFence, Value: c.lines(n.Lines()), Line: c.firstLine(n)}, false
	case *gmast.HTMLBlock:
		value := c.lines(n.Lines())
		if n.HasClosure() {
			value += string(n.ClosureLine.Value(c.source))
		}
		return &ast.Node{Kind: ast.KindHTMLBlock, Value: value, Line: c.firstLine(n)}, false
	case *gmast.Blockquote:
		return ast.NewNode(ast.KindBlockquote), true
	case *gmast.List:
		return c.list(n), true
	case *gmast.ListItem:
		return ast.NewNode(ast.KindListItem), true
	case *gmast.CodeSpan:
		return &ast.Node{Kind: ast.KindInlineCode, Value: c.codeSpan(n)}, false
	case *gmast.Emphasis:
		if n.Level >= 2 {
			return ast.NewNode(ast.KindStrong), true
		}
		return ast.NewNode(ast.KindEmphasis), true
	case *gmast.Link:
		l := ast.NewNode(ast.KindLink)
		l.SetAttr(ast.AttrHref, string(n.Destination))
		if len(n.Title) > 0 {
			l.SetAttr(ast.AttrTitle, string(n.Title))
		}
		return l, true
	case *gmast.AutoLink:
		return c.autoLink(n), false
	case *gmast.Image:
		img := ast.NewNode(ast.KindImage)
		img.SetAttr(ast.AttrSrc, string(n.Destination))
		if len(n.Title) > 0 {
			img.SetAttr(ast.AttrTitle, string(n.Title))
		}
		return img, true
	case *gmast.RawHTML:
		return &ast.Node{Kind: ast.KindRawHTML, Value: c.lines(n.Segments)}, false
	case *east.Strikethrough:
		return ast.NewNode(ast.KindStrikethrough), true
	case *east.Table:
		return ast.NewNode(ast.KindTable), true
	case *east.TableHeader:
		row := ast.NewNode(ast.KindTableRow)
		row.SetAttr(ast.AttrHeader, "true")
		return row, true
	case *east.TableRow:
		return ast.NewNode(ast.KindTableRow), true
	case *east.TableCell:
		cell := ast.NewNode(ast.KindTableCell)
		if n.Alignment != east.AlignNone {
			cell.SetAttr(ast.AttrAlign, n.Alignment.String())
		}
		return cell, true
	case *east.TaskCheckBox:
		check := ast.NewNode(ast.KindTaskCheck)
		check.SetAttr(ast.AttrChecked, strconv.FormatBool(n.IsChecked))
		return check, false
	case *directiveMarkerNode:
		return &ast.Node{Kind: ast.KindDirectiveMarker, Value: n.marker, Line: c.line(n.offset)}, false
	}
	return nil, true
}

func (c *treeConverter) fencedCode(n *gmast.FencedCodeBlock) *ast.Node {
	node := &ast.Node{Kind: ast.KindCodeFence, Value: c.lines(n.Lines())}
	if n.Info != nil {
		info := strings.TrimSpace(string(n.Info.Segment.Value(c.source)))
		lang, meta, _ := strings.Cut(info, " ")
		node.Lang = lang
		node.RawMeta = strings.TrimSpace(meta)
		node.Line = c.line(n.Info.Segment.Start)
	} else if l := c.firstLine(n); l > 1 {
		node.Line = l - 1
	}
	return node
}

func (c *treeConverter) list(n *gmast.List) *ast.Node {
	list := ast.NewNode(ast.KindList)
	list.SetAttr(ast.AttrTight, strconv.FormatBool(n.IsTight))
	if n.IsOrdered() {
		list.SetAttr(ast.AttrOrdered, "true")
		list.SetAttr(ast.AttrStart, strconv.Itoa(n.Start))
	}
	return list
}

func (c *treeConverter) autoLink(n *gmast.AutoLink) *ast.Node {
	label := string(n.Label(c.source))
	href := string(n.URL(c.source))
	if n.AutoLinkType == gmast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
		href = "mailto:" + href
	}
	link := ast.NewNode(ast.KindLink)
	link.SetAttr(ast.AttrHref, href)
	link.AppendChild(ast.NewText(label))
	return link
}

// codeSpan joins the span's text, turning line endings into spaces.
func (c *treeConverter) codeSpan(n *gmast.CodeSpan) string {
	var b bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		var value []byte
		switch t := child.(type) {
		case *gmast.Text:
			value = t.Segment.Value(c.source)
		case *gmast.String:
			value = t.Value
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			b.Write(value[:len(value)-1])
			b.WriteByte(' ')
			continue
		}
		b.Write(value)
	}
	return b.String()
}

func (c *treeConverter) lines(segments *text.Segments) string {
	if segments == nil {
		return ""
	}
	var b bytes.Buffer
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		b.Write(seg.Value(c.source))
	}
	return b.String()
}
