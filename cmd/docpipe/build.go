package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	docpipe "github.com/alnah/go-docpipe"
	"github.com/alnah/go-docpipe/internal/config"
	"github.com/alnah/go-docpipe/internal/fileutil"
	"github.com/alnah/go-docpipe/internal/hints"
	"github.com/alnah/go-docpipe/internal/metrics"
	"github.com/alnah/go-docpipe/internal/routes"
)

// Sentinel errors for build operations.
var (
	ErrUsage           = errors.New("invalid usage")
	ErrReadDocument    = errors.New("failed to read document")
	ErrWriteOutput     = errors.New("failed to write output")
	ErrWriteMetrics    = errors.New("failed to write metrics file")
	ErrDocumentsFailed = errors.New("documents failed")
)

// fileResult holds the outcome of a single document.
type fileResult struct {
	Source     string
	OutputPath string // empty when nothing was written
	Err        error
	Warnings   int
	Duration   time.Duration
}

// builder runs the pipeline over a content root and writes one JSON file
// per route.
type builder struct {
	pipeline  *docpipe.Pipeline
	registry  *prometheus.Registry
	inputDir  string
	outputDir string
	ignore    []string
	workers   int
	pretty    bool
	write     bool
}

// newBuilder creates a builder whose pipeline reports into a fresh
// Prometheus registry.
func newBuilder(cfg *config.Config, log zerolog.Logger, write bool) (*builder, error) {
	reg := metrics.NewRegistry()
	p, err := docpipe.NewPipeline(pipelineOptions(cfg, log, metrics.NewPrometheusRecorder(reg))...)
	if err != nil {
		if errors.Is(err, docpipe.ErrUnknownLanguage) {
			return nil, fmt.Errorf("%w%s", err, hints.ForUnknownLanguage(docpipe.KnownLanguages()))
		}
		return nil, err
	}

	ignore := make([]string, 0, len(routes.DefaultIgnore)+len(cfg.Routes.Ignore))
	ignore = append(ignore, routes.DefaultIgnore...)
	ignore = append(ignore, cfg.Routes.Ignore...)

	return &builder{
		pipeline:  p,
		registry:  reg,
		inputDir:  resolveInputDir(cfg),
		outputDir: resolveOutputDir(cfg),
		ignore:    ignore,
		workers:   cfg.Build.Workers,
		pretty:    cfg.Output.Pretty,
		write:     write,
	}, nil
}

// discover lists the routes below the content root.
func (b *builder) discover() ([]routes.Route, error) {
	rs, err := routes.Discover(b.inputDir, b.ignore)
	if err != nil {
		if errors.Is(err, routes.ErrDuplicateRoute) {
			return nil, fmt.Errorf("discovering documents: %w%s", err, hints.ForDuplicateRoute())
		}
		return nil, fmt.Errorf("discovering documents: %w", err)
	}
	return rs, nil
}

// build processes rs concurrently and, unless checking, writes the trees.
// Results follow the order of rs. A document that cannot be read fails on
// its own; the others are still processed.
func (b *builder) build(ctx context.Context, rs []routes.Route) ([]fileResult, *docpipe.Report) {
	results := make([]fileResult, len(rs))
	docs := make([]docpipe.Document, 0, len(rs))
	slots := make([]int, 0, len(rs))
	for i, r := range rs {
		data, err := os.ReadFile(r.File) // #nosec G304 -- discovered below the content root
		if err != nil {
			results[i] = fileResult{Source: r.Rel, Err: fmt.Errorf("%w: %w", ErrReadDocument, err)}
			continue
		}
		docs = append(docs, docpipe.Document{Source: r.Rel, URLPath: r.URLPath, Content: string(data)})
		slots = append(slots, i)
	}

	report := b.pipeline.ProcessBatch(ctx, docs, b.workers)

	for j, o := range report.Outcomes {
		r := fileResult{Source: o.Source, Err: o.Err, Duration: o.Duration}
		if o.Result != nil {
			r.Warnings = len(o.Result.Diagnostics)
			if b.write {
				r.OutputPath, r.Err = b.writeResult(o.Result)
			}
		}
		results[slots[j]] = r
	}
	return results, report
}

// writeResult writes one processed document to its route file.
func (b *builder) writeResult(res *docpipe.Result) (string, error) {
	path, err := fileutil.RouteFile(b.outputDir, res.URLPath, "json")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	var data []byte
	if b.pretty {
		data, err = json.MarshalIndent(res, "", "  ")
	} else {
		data, err = json.Marshal(res)
	}
	if err != nil {
		return "", fmt.Errorf("%w: encoding %s: %w", ErrWriteOutput, res.Source, err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return path, nil
}

// removeOutput deletes the route file of a document that no longer exists.
func (b *builder) removeOutput(urlPath string) (string, error) {
	path, err := fileutil.RouteFile(b.outputDir, urlPath, "json")
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return path, nil
}

// writeMetrics writes the registry to path when path is set.
func (b *builder) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path, b.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteMetrics, err)
	}
	return nil
}

// hintFor returns an actionable hint for a document failure.
func (b *builder) hintFor(err error) string {
	switch {
	case errors.Is(err, docpipe.ErrUnknownDirectiveKind):
		return hints.ForUnknownDirective(b.pipeline.DirectiveKinds())
	case errors.Is(err, docpipe.ErrUnbalancedDirective):
		return hints.ForUnbalancedDirective()
	case errors.Is(err, docpipe.ErrDirectiveNestingTooDeep):
		return hints.ForNestingTooDeep(b.pipeline.MaxDirectiveDepth())
	case errors.Is(err, docpipe.ErrMalformedFrontMatter):
		return hints.ForMalformedFrontMatter()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// runBuild implements the build and check commands. check runs every pass
// but writes nothing.
func runBuild(ctx context.Context, name string, args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags(name, args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected at most one content directory, got %d", ErrUsage, len(positional))
	}

	s, err := loadSettings(flags.common, env)
	if err != nil {
		return withConfigHint(err, flags.common.config)
	}
	mergeBuildFlags(flags, positional, s.cfg)
	if err := s.finish(flags.common, env); err != nil {
		return err
	}

	b, err := newBuilder(s.cfg, s.log, name == cmdBuild)
	if err != nil {
		return err
	}

	rs, err := b.discover()
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		s.log.Warn().Str("dir", b.inputDir).Msg("no documents found")
		return nil
	}

	results, report := b.build(ctx, rs)
	s.log.Debug().
		Str("build_id", report.BuildID.String()).
		Int("workers", report.Workers).
		Dur("duration", report.Duration).
		Msg("build finished")

	failed := printResults(results, flags.common.quiet, flags.common.verbose, b.hintFor, env)

	if err := b.writeMetrics(s.cfg.Metrics.File); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, failed, len(results))
	}
	return nil
}

// withConfigHint appends the config lookup hint to not-found errors.
func withConfigHint(err error, name string) error {
	if !errors.Is(err, config.ErrConfigNotFound) || name == "" || fileutil.IsFilePath(name) {
		return err
	}
	return fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
}

// printResults outputs per-document outcomes and returns the failure count.
func printResults(results []fileResult, quiet, verbose bool, hintFor func(error) string, env *Environment) int {
	var succeeded, failed, warnings int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Source, r.Err, hintFor(r.Err))
			continue
		}
		succeeded++
		warnings += r.Warnings

		if quiet {
			continue
		}

		switch {
		case verbose && r.OutputPath != "":
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.Source, r.OutputPath, r.Duration.Round(time.Millisecond))
		case verbose:
			fmt.Fprintf(env.Stdout, "%s ok (%v)\n", r.Source, r.Duration.Round(time.Millisecond))
		case r.OutputPath != "":
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		default:
			fmt.Fprintf(env.Stdout, "Checked %s\n", r.Source)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed", succeeded, failed)
		if warnings > 0 {
			fmt.Fprintf(env.Stdout, ", %d warnings", warnings)
		}
		fmt.Fprintln(env.Stdout)
	}

	return failed
}
