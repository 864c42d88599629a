package pipeline

import "github.com/alnah/go-docpipe/ast"

// AutolinkBehavior is the value of the data-autolink attribute.
const AutolinkBehavior = "wrap"

// AnchorWrapper marks slugged headings as self-linking.
type AnchorWrapper interface {
	WrapAnchors(root *ast.Node)
}

// SelfLinkAnchors sets id, data-self-link and data-autolink on every
// heading that has a slug. Running it twice changes nothing.
type SelfLinkAnchors struct{}

func (SelfLinkAnchors) WrapAnchors(root *ast.Node) {
	ast.Inspect(root, ast.KindHeading, func(h *ast.Node) {
		if h.Slug == "" {
			return
		}
		h.SetAttr(ast.AttrID, h.Slug)
		h.SetAttr(ast.AttrSelfLink, "#"+h.Slug)
		h.SetAttr(ast.AttrAutolink, AutolinkBehavior)
	})
}
