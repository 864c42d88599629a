// Package pipeline implements the passes that turn one Markdown document
// into a docpipe syntax tree.
//
// Each pass is a small interface with a single default implementation:
//   - Preprocessor: line ending normalization and inline fence splitting
//   - FrontMatterExtractor: YAML metadata at the top of a document
//   - TreeParser: Markdown to ast via Goldmark, emitting directive markers
//   - DirectiveParser: folds ::: markers into nested callout nodes
//   - HeadingSlugger and AnchorWrapper: heading identifiers and self links
//   - CodeHighlighter: Chroma token spans for code fences
//   - MetaPropagator: fence meta (filename, highlighted lines)
//
// Ordering and error policy live in the root docpipe package. Passes hold no
// per-document state, so one instance can serve concurrent documents.
package pipeline
