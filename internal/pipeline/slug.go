package pipeline

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-docpipe/ast"
)

// EmptySlug replaces slugs that normalize to nothing.
const EmptySlug = "heading"

// HeadingSlugger assigns unique identifiers to headings.
type HeadingSlugger interface {
	SlugHeadings(root *ast.Node)
}

// UnicodeSlugger derives slugs from heading text in document order.
// Repeated slugs get -1, -2, ... suffixes; uniqueness is per document.
type UnicodeSlugger struct{}

func (UnicodeSlugger) SlugHeadings(root *ast.Node) {
	seen := make(map[string]struct{})
	lower := cases.Lower(language.Und)
	ast.Inspect(root, ast.KindHeading, func(h *ast.Node) {
		base := slugify(lower, ast.TextContent(h))
		slug := base
		for i := 1; ; i++ {
			if _, taken := seen[slug]; !taken {
				break
			}
			slug = base + "-" + strconv.Itoa(i)
		}
		seen[slug] = struct{}{}
		h.Slug = slug
	})
}

// slugify normalizes text to NFC, lower-cases it, keeps letters, digits
// and hyphens of any script, and turns whitespace runs into one hyphen.
func slugify(lower cases.Caser, text string) string {
	s := lower.String(norm.NFC.String(strings.TrimSpace(text)))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case r == '-', unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		default:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte('-')
		}
		space = false
		b.WriteRune(r)
	}

	if b.Len() == 0 {
		return EmptySlug
	}
	return b.String()
}
