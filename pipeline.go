package docpipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-docpipe/ast"
	"github.com/alnah/go-docpipe/internal/metrics"
	"github.com/alnah/go-docpipe/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Preprocessor         = pipeline.SourcePreprocessor{}
	_ pipeline.FrontMatterExtractor = pipeline.YAMLFrontMatter{}
	_ pipeline.TreeParser           = (*pipeline.GoldmarkParser)(nil)
	_ pipeline.DirectiveParser      = (*pipeline.CalloutParser)(nil)
	_ pipeline.HeadingSlugger       = pipeline.UnicodeSlugger{}
	_ pipeline.AnchorWrapper        = pipeline.SelfLinkAnchors{}
	_ pipeline.LinkRewriter         = pipeline.RouteLinks{}
	_ pipeline.CodeHighlighter      = (*pipeline.ChromaHighlighter)(nil)
	_ pipeline.MetaPropagator       = pipeline.FenceMeta{}
	_ pipeline.TOCBuilder           = pipeline.NumberedTOC{}
	_ Recorder                      = metrics.NoopRecorder{}
	_ Recorder                      = (*metrics.PrometheusRecorder)(nil)
)

// Pass names used in logs and metrics.
const (
	PassFrontMatter = "frontmatter"
	PassParse       = "parse"
	PassDirectives  = "directives"
	PassSlugs       = "slugs"
	PassAnchors     = "anchors"
	PassLinks       = "links"
	PassHighlight   = "highlight"
	PassMeta        = "meta"
	PassTOC         = "toc"
)

// Pipeline turns documents into finished trees. The passes hold no
// per-document state, so one Pipeline may process documents concurrently.
type Pipeline struct {
	logger       zerolog.Logger
	recorder     Recorder
	callouts     *pipeline.CalloutParser
	registry     *pipeline.LexerRegistry
	preprocessor pipeline.Preprocessor
	frontMatter  pipeline.FrontMatterExtractor
	parser       pipeline.TreeParser
	directives   pipeline.DirectiveParser
	slugger      pipeline.HeadingSlugger
	anchors      pipeline.AnchorWrapper
	links        pipeline.LinkRewriter
	highlighter  pipeline.CodeHighlighter
	meta         pipeline.MetaPropagator
	toc          pipeline.TOCBuilder
}

// NewPipeline creates a Pipeline. Without options it recognizes the
// default callout kinds, allows eight levels of directive nesting and
// highlights every language Chroma knows.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	cfg := pipelineConfig{
		kinds:       pipeline.DefaultDirectiveKinds,
		maxDepth:    pipeline.DefaultMaxDirectiveDepth,
		tocMinDepth: pipeline.DefaultTOCMinDepth,
		tocMaxDepth: pipeline.DefaultTOCMaxDepth,
		logger:      zerolog.Nop(),
		recorder:    metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	registry, err := pipeline.NewLexerRegistry(cfg.languages...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	callouts := pipeline.NewCalloutParser(cfg.kinds, cfg.maxDepth)
	return &Pipeline{
		logger:       cfg.logger,
		recorder:     cfg.recorder,
		callouts:     callouts,
		registry:     registry,
		preprocessor: pipeline.SourcePreprocessor{},
		frontMatter:  pipeline.YAMLFrontMatter{},
		parser:       pipeline.NewGoldmarkParser(),
		directives:   callouts,
		slugger:      pipeline.UnicodeSlugger{},
		anchors:      pipeline.SelfLinkAnchors{},
		links:        pipeline.RouteLinks{},
		highlighter:  pipeline.NewChromaHighlighter(registry),
		meta:         pipeline.FenceMeta{},
		toc:          pipeline.NumberedTOC{MinDepth: cfg.tocMinDepth, MaxDepth: cfg.tocMaxDepth},
	}, nil
}

// DirectiveKinds returns the callout kinds the pipeline recognizes, sorted.
func (p *Pipeline) DirectiveKinds() []string {
	return p.callouts.Kinds()
}

// MaxDirectiveDepth returns the deepest allowed directive nesting.
func (p *Pipeline) MaxDirectiveDepth() int {
	return p.callouts.MaxDepth()
}

// Languages returns the sorted language names the highlighter accepts.
func (p *Pipeline) Languages() []string {
	return p.registry.Languages()
}

// KnownLanguages returns every language name and alias Chroma can
// highlight, sorted.
func KnownLanguages() []string {
	r, _ := pipeline.NewLexerRegistry()
	return r.Languages()
}

// Process runs every pass over doc in order: front matter, parse,
// directives, slugs, anchors, links, highlighting, fence meta and the
// table of contents. A fatal error is returned as *DocumentError.
// Internal panics are recovered into ErrInternal.
func (p *Pipeline) Process(ctx context.Context, doc Document) (result *Result, err error) {
	start := time.Now()
	log := p.logger.With().Str("source", doc.Source).Logger()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &DocumentError{Source: doc.Source, Err: fmt.Errorf("%w: %v", ErrInternal, r)}
		}
		p.recordOutcome(log, err, time.Since(start))
	}()

	fail := func(err error) (*Result, error) {
		return nil, &DocumentError{Source: doc.Source, Err: err}
	}

	content, lineMap := p.preprocessor.Preprocess(doc.Content)

	var (
		metadata map[string]any
		body     string
	)
	if err := p.runPass(ctx, log, PassFrontMatter, func() (err error) {
		metadata, body, err = p.frontMatter.Extract(content)
		return err
	}); err != nil {
		return fail(err)
	}

	var tree *ast.Node
	if err := p.runPass(ctx, log, PassParse, func() (err error) {
		tree, err = p.parser.Parse(ctx, body)
		return err
	}); err != nil {
		return fail(err)
	}
	remapLines(tree, strings.Count(content[:len(content)-len(body)], "\n"), lineMap)

	if err := p.runPass(ctx, log, PassDirectives, func() error {
		return p.directives.FoldDirectives(tree)
	}); err != nil {
		return fail(err)
	}

	var diags []pipeline.Diagnostic
	var toc []pipeline.TOCEntry
	steps := []struct {
		name string
		run  func()
	}{
		{PassSlugs, func() { p.slugger.SlugHeadings(tree) }},
		{PassAnchors, func() { p.anchors.WrapAnchors(tree) }},
		{PassLinks, func() { p.links.RewriteLinks(tree, doc.Source) }},
		{PassHighlight, func() { diags = append(diags, p.highlighter.Highlight(tree)...) }},
		{PassMeta, func() { diags = append(diags, p.meta.PropagateMeta(tree)...) }},
		{PassTOC, func() { toc = p.toc.BuildTOC(tree) }},
	}
	for _, s := range steps {
		if err := p.runPass(ctx, log, s.name, func() error { s.run(); return nil }); err != nil {
			return fail(err)
		}
	}

	return &Result{
		Source:      doc.Source,
		URLPath:     doc.URLPath,
		Metadata:    metadata,
		Tree:        tree,
		TOC:         toTOCEntries(toc),
		Diagnostics: p.toDiagnostics(log, doc.Source, diags),
	}, nil
}

// runPass checks for cancellation, then times fn.
func (p *Pipeline) runPass(ctx context.Context, log zerolog.Logger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	p.recorder.ObservePassDuration(name, elapsed)
	log.Debug().Str("pass", name).Dur("duration", elapsed).Err(err).Msg("pass finished")
	return err
}

func (p *Pipeline) recordOutcome(log zerolog.Logger, err error, elapsed time.Duration) {
	p.recorder.ObserveDocumentDuration(elapsed)
	switch {
	case err == nil:
		p.recorder.IncDocumentOutcome(metrics.OutcomeSuccess)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.recorder.IncDocumentOutcome(metrics.OutcomeCanceled)
	default:
		p.recorder.IncDocumentOutcome(metrics.OutcomeFailed)
		log.Debug().Err(err).Msg("document failed")
	}
}

func (p *Pipeline) toDiagnostics(log zerolog.Logger, source string, diags []pipeline.Diagnostic) []Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		out[i] = Diagnostic{Source: source, Code: d.Code, Message: d.Message, Line: d.Line, Err: d.Err}
		p.recorder.IncDiagnostic(d.Code)
		log.Warn().Str("code", d.Code).Int("line", d.Line).Msg(d.Message)
	}
	return out
}

func toTOCEntries(entries []pipeline.TOCEntry) []TOCEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]TOCEntry, len(entries))
	for i, e := range entries {
		out[i] = TOCEntry(e)
	}
	return out
}

// remapLines makes block line numbers point into the original document:
// offset accounts for removed front matter and m for lines the
// preprocessor inserted.
func remapLines(root *ast.Node, offset int, m pipeline.LineMap) {
	if offset == 0 && len(m) == 0 {
		return
	}
	_ = ast.Walk(root, func(n *ast.Node) (ast.WalkStatus, error) {
		if n.Line > 0 {
			n.Line = m.Original(n.Line + offset)
		}
		return ast.WalkContinue, nil
	})
}
