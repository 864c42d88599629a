package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/alnah/go-docpipe/ast"
)

// LexerRegistry maps fence languages to Chroma lexers. It is built once and
// only read afterwards, so it is safe to share between goroutines.
type LexerRegistry struct {
	lexers map[string]chroma.Lexer
}

// NewLexerRegistry registers every Chroma lexer under its name and aliases,
// or only the given languages when the list is not empty.
func NewLexerRegistry(languages ...string) (*LexerRegistry, error) {
	r := &LexerRegistry{lexers: make(map[string]chroma.Lexer)}

	if len(languages) == 0 {
		for _, l := range lexers.GlobalLexerRegistry.Lexers {
			coalesced := chroma.Coalesce(l)
			cfg := l.Config()
			r.add(cfg.Name, coalesced)
			for _, alias := range cfg.Aliases {
				r.add(alias, coalesced)
			}
		}
		return r, nil
	}

	for _, lang := range languages {
		l := lexers.Get(lang)
		if l == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
		}
		r.add(lang, chroma.Coalesce(l))
	}
	return r, nil
}

func (r *LexerRegistry) add(name string, l chroma.Lexer) {
	key := strings.ToLower(name)
	if _, exists := r.lexers[key]; !exists {
		r.lexers[key] = l
	}
}

// Lookup returns the lexer for lang, or nil.
func (r *LexerRegistry) Lookup(lang string) chroma.Lexer {
	if lang == "" {
		return nil
	}
	return r.lexers[strings.ToLower(lang)]
}

// Languages returns the registered names in sorted order.
func (r *LexerRegistry) Languages() []string {
	names := make([]string, 0, len(r.lexers))
	for name := range r.lexers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CodeHighlighter fills the token spans of code fences.
type CodeHighlighter interface {
	Highlight(root *ast.Node) []Diagnostic
}

// ChromaHighlighter tokenizes fences with the lexer registered for their
// language. The spans of a fence always concatenate to its code: when
// Chroma fails or alters the text, the fence gets one unstyled span and a
// diagnostic.
type ChromaHighlighter struct {
	registry *LexerRegistry
}

func NewChromaHighlighter(registry *LexerRegistry) *ChromaHighlighter {
	return &ChromaHighlighter{registry: registry}
}

func (h *ChromaHighlighter) Highlight(root *ast.Node) []Diagnostic {
	var diags []Diagnostic
	ast.Inspect(root, ast.KindCodeFence, func(n *ast.Node) {
		tokens, err := h.tokenize(n.Lang, n.Value)
		n.Tokens = tokens
		if err != nil {
			diags = append(diags, Diagnostic{
				Code:    CodeHighlightFallback,
				Message: fmt.Sprintf("code fence %q at line %d rendered unstyled: %v", n.Lang, n.Line, err),
				Line:    n.Line,
				Err:     err,
			})
		}
	})
	return diags
}

func (h *ChromaHighlighter) tokenize(lang, code string) ([]ast.Token, error) {
	if code == "" {
		return nil, nil
	}
	plain := []ast.Token{{Text: code}}

	lexer := h.registry.Lookup(lang)
	if lexer == nil {
		return plain, nil
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain, fmt.Errorf("%w: %w", ErrHighlightFallback, err)
	}

	var (
		tokens []ast.Token
		joined strings.Builder
	)
	for _, t := range it.Tokens() {
		if t.Value == "" {
			continue
		}
		joined.WriteString(t.Value)
		class := tokenClass(t.Type)
		if last := len(tokens) - 1; last >= 0 && tokens[last].Class == class {
			tokens[last].Text += t.Value
			continue
		}
		tokens = append(tokens, ast.Token{Text: t.Value, Class: class})
	}

	switch got := joined.String(); got {
	case code:
		return tokens, nil
	case code + "\n":
		// Lexers with EnsureNL append a newline the source did not have.
		return trimFinalNewline(tokens), nil
	default:
		return plain, fmt.Errorf("%w: tokens do not reproduce the source", ErrHighlightFallback)
	}
}

func trimFinalNewline(tokens []ast.Token) []ast.Token {
	last := len(tokens) - 1
	tokens[last].Text = strings.TrimSuffix(tokens[last].Text, "\n")
	if tokens[last].Text == "" {
		tokens = tokens[:last]
	}
	return tokens
}

// tokenClass returns the short CSS class Chroma uses for t, falling back to
// the token's category.
func tokenClass(t chroma.TokenType) string {
	if class, ok := chroma.StandardTypes[t]; ok {
		return class
	}
	if class, ok := chroma.StandardTypes[t.SubCategory()]; ok {
		return class
	}
	return chroma.StandardTypes[t.Category()]
}
