package pipeline_test

import (
	"testing"

	"github.com/alnah/go-docpipe/ast"
	"github.com/alnah/go-docpipe/internal/pipeline"
)

// ---------------------------------------------------------------------------
// TestRouteLinks - Relative document links become route URLs
// ---------------------------------------------------------------------------

func TestRouteLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		href   string
		want   string
	}{
		{name: "sibling", source: "guides/intro.md", href: "./setup.md", want: "/guides/setup"},
		{name: "sibling without dot", source: "guides/intro.md", href: "other.mdx", want: "/guides/other"},
		{name: "parent index with fragment", source: "guides/intro.md", href: "../index.md#top", want: "/#top"},
		{name: "param segment", source: "guides/intro.md", href: "$id/index.md", want: "/guides/:id"},
		{name: "escaped space", source: "intro.md", href: "my%20doc.md", want: "/my doc"},
		{name: "leaves content root", source: "guides/intro.md", href: "../../x.md", want: "../../x.md"},
		{name: "external url", source: "intro.md", href: "https://example.com/a.md", want: "https://example.com/a.md"},
		{name: "anchor", source: "intro.md", href: "#frag", want: "#frag"},
		{name: "absolute path", source: "intro.md", href: "/abs.md", want: "/abs.md"},
		{name: "not a document", source: "intro.md", href: "image.png", want: "image.png"},
		{name: "mailto", source: "intro.md", href: "mailto:a@b.c", want: "mailto:a@b.c"},
		{name: "absolute source", source: "/srv/docs/intro.md", href: "setup.md", want: "setup.md"},
		{name: "empty source", source: "", href: "setup.md", want: "setup.md"},
	}

	var rw pipeline.RouteLinks
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			link := ast.NewNode(ast.KindLink)
			link.SetAttr(ast.AttrHref, tt.href)
			root := &ast.Node{Kind: ast.KindDocument, Children: []*ast.Node{link}}

			rw.RewriteLinks(root, tt.source)
			if got, _ := link.Attr(ast.AttrHref); got != tt.want {
				t.Errorf("href = %q, want %q", got, tt.want)
			}
		})
	}
}
