package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/alnah/go-docpipe/internal/metrics"
	"github.com/alnah/go-docpipe/internal/routes"
)

// shutdownTimeout bounds the graceful stop of the metrics server.
const shutdownTimeout = 5 * time.Second

// debouncer coalesces bursts of triggers into a single signal on C.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	C     chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, C: make(chan struct{}, 1)}
}

// Trigger restarts the quiet period.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.C <- struct{}{}:
		default:
		}
	})
}

// Stop cancels a pending signal.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// watchSession keeps the output directory in sync with the content root.
// All fields are owned by the goroutine running loop.
type watchSession struct {
	b           *builder
	log         zerolog.Logger
	env         *Environment
	quiet       bool
	verbose     bool
	metricsFile string
	outputAbs   string

	known   map[string]routes.Route // by file path
	pending map[string]bool
}

// newWatchSession resolves the builder's directories to absolute paths so
// event names and discovered files compare equal.
func newWatchSession(b *builder, log zerolog.Logger, env *Environment, common commonFlags, metricsFile string) (*watchSession, error) {
	in, err := filepath.Abs(b.inputDir)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(b.outputDir)
	if err != nil {
		return nil, err
	}
	b.inputDir = in
	return &watchSession{
		b:           b,
		log:         log,
		env:         env,
		quiet:       common.quiet,
		verbose:     common.verbose,
		metricsFile: metricsFile,
		outputAbs:   out,
		known:       make(map[string]routes.Route),
		pending:     make(map[string]bool),
	}, nil
}

// rebuild rediscovers the content root, removes the outputs of vanished
// routes and processes new, moved or changed documents. full rebuilds
// every route.
func (w *watchSession) rebuild(ctx context.Context, full bool) error {
	rs, err := w.b.discover()
	if err != nil {
		return err
	}

	current := make(map[string]routes.Route, len(rs))
	var changed []routes.Route
	for _, r := range rs {
		current[r.File] = r
		if _, seen := w.known[r.File]; full || !seen || w.pending[r.File] {
			changed = append(changed, r)
		}
	}

	var removed []routes.Route
	for file, r := range w.known {
		if _, ok := current[file]; !ok {
			removed = append(removed, r)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Rel < removed[j].Rel })
	for _, r := range removed {
		path, err := w.b.removeOutput(r.URLPath)
		if err != nil {
			w.log.Warn().Err(err).Str("source", r.Rel).Msg("removing output")
			continue
		}
		if !w.quiet {
			fmt.Fprintf(w.env.Stdout, "Removed %s\n", path)
		}
	}

	w.known = current
	w.pending = make(map[string]bool)

	if len(changed) == 0 {
		return nil
	}

	results, report := w.b.build(ctx, changed)
	for i, r := range results {
		// Unreadable files stay pending so the next event retries them.
		if errors.Is(r.Err, ErrReadDocument) {
			w.pending[changed[i].File] = true
		}
	}
	failed := printResults(results, w.quiet, w.verbose, w.b.hintFor, w.env)
	w.log.Info().
		Str("build_id", report.BuildID.String()).
		Int("documents", len(results)).
		Int("failed", failed).
		Dur("duration", report.Duration).
		Msg("rebuilt")

	return w.b.writeMetrics(w.metricsFile)
}

// loop handles filesystem events until ctx is done.
func (w *watchSession) loop(ctx context.Context, fsw *fsnotify.Watcher, deb *debouncer) error {
	defer deb.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fsw, ev) {
				deb.Trigger()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")
		case <-deb.C:
			if err := w.rebuild(ctx, false); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Error().Err(err).Msg("rebuild failed")
			}
		}
	}
}

// handleEvent records a relevant change and reports whether a rebuild
// should be scheduled. New directories are watched as they appear.
func (w *watchSession) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) bool {
	name := filepath.Clean(ev.Name)
	if shouldIgnoreEvent(name) || w.inOutput(name) {
		return false
	}

	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fsw, name)
			return true
		}
	}

	// A removed or renamed directory can no longer be inspected, so any
	// such event forces rediscovery.
	if !routes.IsDocument(name) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	w.log.Debug().Str("path", name).Str("op", ev.Op.String()).Msg("file change detected")
	w.pending[name] = true
	return true
}

// inOutput reports whether path lies inside the output directory.
func (w *watchSession) inOutput(path string) bool {
	rel, err := filepath.Rel(w.outputAbs, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// addDirsRecursive watches root and every directory below it, skipping
// hidden folders and the output directory.
func (w *watchSession) addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.inOutput(path)) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.log.Warn().Err(err).Str("dir", path).Msg("watch add failed")
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for hidden, swap and temporary files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}

// startMetricsServer serves reg on addr at /metrics. It returns once the
// listener is bound.
func startMetricsServer(addr string, reg *prometheus.Registry, log zerolog.Logger) (*http.Server, net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: shutdownTimeout}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv, ln.Addr(), nil
}

// stopMetricsServer shuts srv down gracefully.
func stopMetricsServer(srv *http.Server, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("metrics server shutdown")
	}
}

// runWatch builds the content root once, then rebuilds on changes until
// interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args)
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
	mergeWatchFlags(flags, positional, s.cfg)
	if err := s.finish(flags.common, env); err != nil {
		return err
	}

	b, err := newBuilder(s.cfg, s.log, true)
	if err != nil {
		return err
	}
	w, err := newWatchSession(b, s.log, env, flags.common, s.cfg.Metrics.File)
	if err != nil {
		return err
	}

	if s.cfg.Metrics.Addr != "" {
		srv, addr, err := startMetricsServer(s.cfg.Metrics.Addr, b.registry, s.log)
		if err != nil {
			return err
		}
		defer stopMetricsServer(srv, s.log)
		s.log.Info().Str("addr", addr.String()).Msg("serving metrics at /metrics")
	}

	if err := w.rebuild(ctx, true); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()
	w.addDirsRecursive(fsw, b.inputDir)

	s.log.Info().
		Str("dir", b.inputDir).
		Dur("debounce", s.cfg.Watch.DebounceDuration()).
		Msg("watching for changes")

	return w.loop(ctx, fsw, newDebouncer(s.cfg.Watch.DebounceDuration()))
}
