// Package ast defines the syntax tree produced by the docpipe pipeline.
//
// The schema is closed: every node is a *Node whose Kind is one of the
// constants below, so renderers can switch over Kind exhaustively. Passes
// communicate with the renderer through typed fields (Slug, Tokens, Meta)
// and string attributes (Attrs), never through new node types.
package ast

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the type of a Node.
type Kind int

// Node kinds.
const (
	KindDocument Kind = iota
	KindParagraph
	KindHeading
	KindText
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindInlineCode
	KindLink
	KindImage
	KindRawHTML
	KindHTMLBlock
	KindBlockquote
	KindList
	KindListItem
	KindTaskCheck
	KindThematicBreak
	KindTable
	KindTableRow
	KindTableCell
	KindLineBreak
	KindCodeFence
	KindDirective
	KindDirectiveMarker
)

var kindNames = [...]string{
	KindDocument:        "document",
	KindParagraph:       "paragraph",
	KindHeading:         "heading",
	KindText:            "text",
	KindEmphasis:        "emphasis",
	KindStrong:          "strong",
	KindStrikethrough:   "strikethrough",
	KindInlineCode:      "inlineCode",
	KindLink:            "link",
	KindImage:           "image",
	KindRawHTML:         "rawHTML",
	KindHTMLBlock:       "htmlBlock",
	KindBlockquote:      "blockquote",
	KindList:            "list",
	KindListItem:        "listItem",
	KindTaskCheck:       "taskCheck",
	KindThematicBreak:   "thematicBreak",
	KindTable:           "table",
	KindTableRow:        "tableRow",
	KindTableCell:       "tableCell",
	KindLineBreak:       "lineBreak",
	KindCodeFence:       "codeFence",
	KindDirective:       "directive",
	KindDirectiveMarker: "directiveMarker",
}

// String returns the stable name used in JSON output.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("ast: unknown node kind %q", name)
}

// Attribute names understood by renderers.
const (
	AttrID       = "id"
	AttrSelfLink = "data-self-link"
	AttrAutolink = "data-autolink"
	AttrHref     = "href"
	AttrSrc      = "src"
	AttrTitle    = "title"
	AttrChecked  = "checked"
	AttrAlign    = "align"
	AttrOrdered  = "ordered"
	AttrStart    = "start"
	AttrTight    = "tight"
	AttrHeader   = "header"
)

// Token is one highlighted span of a code fence.
// Class is empty for unstyled text.
type Token struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

// Node is a syntax tree node. Which fields are meaningful depends on Kind:
//
//   - Value: literal text of Text, InlineCode, RawHTML and HTMLBlock nodes,
//     the raw code of a CodeFence, the marker line of a DirectiveMarker.
//   - Level: heading level, or the 1-based nesting depth of a Directive.
//   - Name: the callout kind of a Directive.
//   - Lang, RawMeta: the info string of a CodeFence, split at the first space.
//   - Slug: the heading identifier.
//   - Tokens: highlighted spans of a CodeFence.
//   - Meta, HighlightLines: parsed fence meta of a CodeFence.
//   - Line: 1-based source line of a block node, 0 when unknown.
type Node struct {
	Kind           Kind              `json:"kind"`
	Line           int               `json:"line,omitempty"`
	Value          string            `json:"value,omitempty"`
	Level          int               `json:"level,omitempty"`
	Name           string            `json:"name,omitempty"`
	Lang           string            `json:"lang,omitempty"`
	RawMeta        string            `json:"rawMeta,omitempty"`
	Slug           string            `json:"slug,omitempty"`
	Attrs          map[string]string `json:"attrs,omitempty"`
	Tokens         []Token           `json:"tokens,omitempty"`
	Meta           map[string]string `json:"meta,omitempty"`
	HighlightLines []int             `json:"highlightLines,omitempty"`
	Children       []*Node           `json:"children,omitempty"`
}

// NewNode returns an empty node of the given kind.
func NewNode(kind Kind) *Node {
	return &Node{Kind: kind}
}

// NewText returns a text node.
func NewText(value string) *Node {
	return &Node{Kind: KindText, Value: value}
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// SetAttr sets an attribute, allocating the map on first use.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// Attr returns an attribute value and whether it is set.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// Clone returns a deep copy of the subtree rooted at n. It copies
// iteratively, so depth is bounded by memory rather than the call stack.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	root := cloneShallow(n)
	stack := []*Node{root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, child := range c.Children {
			if child == nil {
				continue
			}
			c.Children[i] = cloneShallow(child)
			stack = append(stack, c.Children[i])
		}
	}
	return root
}

// cloneShallow copies n and its value fields. The Children slice is fresh
// but still points at the original children.
func cloneShallow(n *Node) *Node {
	c := *n
	c.Attrs = cloneMap(n.Attrs)
	c.Meta = cloneMap(n.Meta)
	if n.Tokens != nil {
		c.Tokens = append([]Token(nil), n.Tokens...)
	}
	if n.HighlightLines != nil {
		c.HighlightLines = append([]int(nil), n.HighlightLines...)
	}
	if n.Children != nil {
		c.Children = append([]*Node(nil), n.Children...)
	}
	return &c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
