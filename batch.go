package docpipe

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps batch concurrency.
	MaxWorkers = 32
)

// Outcome is the result of one document in a batch. Exactly one of Result
// and Err is set.
type Outcome struct {
	Source   string
	Result   *Result
	Err      error
	Duration time.Duration
}

// Report summarizes a batch run. Outcomes follow input order regardless of
// the number of workers.
type Report struct {
	BuildID  uuid.UUID
	Started  time.Time
	Duration time.Duration
	Workers  int
	Outcomes []Outcome
}

// Succeeded returns the number of documents that produced a tree.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failures returns the fatal errors in input order.
func (r *Report) Failures() []error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// Warnings returns every diagnostic of the successful documents.
func (r *Report) Warnings() []Diagnostic {
	var diags []Diagnostic
	for _, o := range r.Outcomes {
		if o.Result != nil {
			diags = append(diags, o.Result.Diagnostics...)
		}
	}
	return diags
}

// Err joins all failures, or returns nil when every document succeeded.
func (r *Report) Err() error {
	return errors.Join(r.Failures()...)
}

// ProcessBatch processes docs concurrently. One document failing never
// stops the others; a canceled context marks the remaining documents with
// the context error.
func (p *Pipeline) ProcessBatch(ctx context.Context, docs []Document, workers int) *Report {
	report := &Report{
		BuildID: uuid.New(),
		Started: time.Now(),
	}
	defer func() {
		report.Duration = time.Since(report.Started)
		p.recorder.ObserveBatchDuration(report.Duration)
	}()

	if len(docs) == 0 {
		return report
	}

	concurrency := ResolveWorkers(workers)
	if concurrency > len(docs) {
		concurrency = len(docs)
	}
	report.Workers = concurrency
	p.recorder.SetWorkers(concurrency)

	log := p.logger.With().Str("build_id", report.BuildID.String()).Logger()
	log.Debug().Int("documents", len(docs)).Int("workers", concurrency).Msg("batch started")

	outcomes := make([]Outcome, len(docs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(docs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				doc := docs[idx]
				if err := ctx.Err(); err != nil {
					outcomes[idx] = Outcome{Source: doc.Source, Err: &DocumentError{Source: doc.Source, Err: err}}
					continue
				}
				start := time.Now()
				res, err := p.Process(ctx, doc)
				outcomes[idx] = Outcome{Source: doc.Source, Result: res, Err: err, Duration: time.Since(start)}
			}
		}()
	}

	for i := range docs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	report.Outcomes = outcomes

	log.Debug().Int("succeeded", report.Succeeded()).Int("failed", len(docs)-report.Succeeded()).Msg("batch finished")
	return report
}

// ResolveWorkers determines the batch concurrency.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	n := workers
	if n <= 0 {
		// GOMAXPROCS is adjusted by automaxprocs in the CLI.
		n = runtime.GOMAXPROCS(0)
	}
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
