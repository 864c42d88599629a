package pipeline

import (
	"net/url"
	"path"
	"strings"

	"github.com/alnah/go-docpipe/ast"
	"github.com/alnah/go-docpipe/internal/routes"
)

// LinkRewriter points links between documents at their routes.
type LinkRewriter interface {
	RewriteLinks(root *ast.Node, source string)
}

// RouteLinks rewrites relative links to sibling documents
// ("../guides/intro.md#setup") into route URLs ("/docs/guides/intro#setup").
// source must be slash-separated and relative to the content root;
// otherwise nothing is rewritten. Links that leave the content root are
// kept as written.
type RouteLinks struct{}

func (RouteLinks) RewriteLinks(root *ast.Node, source string) {
	if source == "" || path.IsAbs(source) || strings.Contains(source, "\\") {
		return
	}
	dir := path.Dir(source)

	ast.Inspect(root, ast.KindLink, func(n *ast.Node) {
		href, ok := n.Attr(ast.AttrHref)
		if !ok || !isRelativeDocLink(href) {
			return
		}
		target, fragment, _ := strings.Cut(href, "#")
		target, _ = url.PathUnescape(target)

		joined := path.Join(dir, target)
		if joined == ".." || strings.HasPrefix(joined, "../") {
			return
		}
		if !routes.IsDocument(joined) {
			return
		}

		rewritten := routes.Path(joined)
		if fragment != "" {
			rewritten += "#" + fragment
		}
		n.SetAttr(ast.AttrHref, rewritten)
	})
}

// isRelativeDocLink reports whether href is a relative path worth
// resolving: no scheme, no host, not an anchor, not absolute.
func isRelativeDocLink(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "/") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.RawQuery == ""
}
