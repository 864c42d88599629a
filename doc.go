// Package docpipe transforms documentation sources into finished syntax
// trees ready for a rendering layer.
//
// # Quick Start
//
// Create a pipeline and process a document:
//
//	p, err := docpipe.NewPipeline()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := p.Process(ctx, docpipe.Document{
//	    Source:  "guides/intro.md",
//	    Content: "---\ntitle: Intro\n---\n# Hello\n\n:::note\nWorld\n:::\n",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Metadata["title"], result.Tree.Children[0].Slug)
//
// # Passes
//
// Every document goes through the same fixed order:
//
//  1. Source preprocessing (byte order mark, line endings, inline fences)
//  2. Front matter extraction (YAML mapping between --- lines)
//  3. Markdown parsing via Goldmark (CommonMark + GFM)
//  4. Directive folding (:::kind ... ::: callouts, nested up to a limit)
//  5. Heading slugs, unique per document
//  6. Self-link anchors on slugged headings
//  7. Relative document links rewritten to routes
//  8. Code highlighting via Chroma
//  9. Code fence meta (filename, highlighted lines, custom keys)
//  10. Numbered table of contents
//
// Malformed front matter, unknown or unbalanced directives and excessive
// nesting abort the document with a *DocumentError. Bad line ranges and
// highlighter failures are reported as Diagnostic values instead.
//
// # Configuration
//
// Use functional options to customize the pipeline:
//
//	p, err := docpipe.NewPipeline(
//	    docpipe.WithDirectiveKinds("note", "warning", "example"),
//	    docpipe.WithMaxDirectiveDepth(4),
//	    docpipe.WithLanguages("go", "bash", "yaml"),
//	    docpipe.WithLogger(logger),
//	)
//
// # Parallel Processing
//
// A Pipeline keeps no per-document state. ProcessBatch fans documents out
// over a fixed number of workers and returns results in input order:
//
//	report := p.ProcessBatch(ctx, docs, 0)
//	if err := report.Err(); err != nil {
//	    log.Print(err)
//	}
package docpipe
