package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var kindDirectiveMarker = gmast.NewNodeKind("DirectiveMarker")

// directiveMarkerNode is a ::: line. Pairing happens after parsing, so the
// block parser only records the line and closes immediately.
type directiveMarkerNode struct {
	gmast.BaseBlock
	marker string
	offset int
}

func (n *directiveMarkerNode) Kind() gmast.NodeKind { return kindDirectiveMarker }

func (n *directiveMarkerNode) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{"Marker": n.marker}, nil)
}

type directiveMarkers struct{}

func (directiveMarkers) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(directiveMarkerParser{}, 100),
	))
}

type directiveMarkerParser struct{}

func (directiveMarkerParser) Trigger() []byte {
	return []byte{':'}
}

func (directiveMarkerParser) Open(parent gmast.Node, reader text.Reader, pc parser.Context) (gmast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || !bytes.HasPrefix(line[pos:], []byte(directiveFence)) {
		return nil, parser.NoChildren
	}
	node := &directiveMarkerNode{
		marker: string(util.TrimRightSpace(line[pos:])),
		offset: segment.Start + pos,
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (directiveMarkerParser) Continue(gmast.Node, text.Reader, parser.Context) parser.State {
	return parser.Close
}

func (directiveMarkerParser) Close(gmast.Node, text.Reader, parser.Context) {}

func (directiveMarkerParser) CanInterruptParagraph() bool { return true }

func (directiveMarkerParser) CanAcceptIndentedLine() bool { return false }
