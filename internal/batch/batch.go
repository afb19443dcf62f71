// Package batch fans a set of documents out to the record builder on a
// bounded worker pool and collects exactly one record per document.
package batch

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/rfscore-cli/internal/metrics"
	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/record"
	"github.com/sells-group/rfscore-cli/internal/scratch"
)

// ErrNoValidRecords is returned, alongside the full result, when no document
// of a non-empty batch produced an OK record.
var ErrNoValidRecords = eris.New("batch: no valid records")

const (
	defaultWorkers     = 4
	defaultTaskTimeout = 30 * time.Second
	progressInterval   = 2 * time.Second
)

// Builder builds the record of one document.
type Builder interface {
	Build(ctx context.Context, doc model.Document) record.Outcome
}

// Result is the outcome of a batch run. Records arrive in completion order,
// not input order.
type Result struct {
	RunID    string
	Records  []model.Record
	OK       int
	Errors   int
	Duration time.Duration
}

// Total returns the number of records, OK and ERROR.
func (r *Result) Total() int {
	return len(r.Records)
}

// Valid returns the OK records.
func (r *Result) Valid() []model.Record {
	valid := make([]model.Record, 0, r.OK)
	for _, rec := range r.Records {
		if rec.OK() {
			valid = append(valid, rec)
		}
	}
	return valid
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the number of documents processed concurrently.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithTaskTimeout sets the time budget of a single document.
func WithTaskTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics records per-document metrics.
func WithMetrics(m *metrics.BatchMetrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(c *Coordinator) {
		if id != "" {
			c.runID = id
		}
	}
}

// Coordinator runs batches of documents.
type Coordinator struct {
	builder Builder
	workers int
	timeout time.Duration
	metrics *metrics.BatchMetrics
	runID   string
}

// New creates a Coordinator with 4 workers and a 30s task timeout unless
// overridden by opts.
func New(builder Builder, opts ...Option) *Coordinator {
	c := &Coordinator{
		builder: builder,
		workers: defaultWorkers,
		timeout: defaultTaskTimeout,
		runID:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunID returns the id shared by every batch this coordinator runs.
func (c *Coordinator) RunID() string {
	return c.runID
}

// Run processes docs and returns one record per document. A document that
// fails or exceeds its timeout yields an ERROR record; it never aborts the
// batch and is never retried. Duplicate input paths are rejected up front.
func (c *Coordinator) Run(ctx context.Context, docs []model.Document) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: c.runID}

	if err := checkDuplicatePaths(docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		zap.L().Info("batch: no documents to process")
		return res, nil
	}
	warnDuplicateContent(docs)

	zap.L().Info("batch: processing",
		zap.String("run_id", c.runID),
		zap.Int("documents", len(docs)),
		zap.Int("workers", c.workers),
		zap.Duration("task_timeout", c.timeout),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	records := make(chan model.Record, len(docs))
	var done atomic.Int64
	progress := rate.Sometimes{First: 1, Interval: progressInterval}

	go func() {
		for _, doc := range docs {
			g.Go(func() error {
				records <- c.runOne(gctx, doc)
				n := done.Add(1)
				progress.Do(func() {
					zap.L().Info("batch: progress",
						zap.Int64("done", n),
						zap.Int("total", len(docs)),
					)
				})
				return nil // don't abort batch on individual failure
			})
		}
		_ = g.Wait()
		close(records)
	}()

	for rec := range records {
		res.Records = append(res.Records, rec)
		if rec.OK() {
			res.OK++
		} else {
			res.Errors++
		}
	}
	res.Duration = time.Since(start)

	zap.L().Info("batch: complete",
		zap.String("run_id", c.runID),
		zap.Int("ok", res.OK),
		zap.Int("errors", res.Errors),
		zap.Duration("elapsed", res.Duration),
	)

	if res.OK == 0 {
		return res, ErrNoValidRecords
	}
	return res, nil
}

// runOne builds one document under its own timeout. The build runs in a
// separate goroutine so a document that ignores cancellation still yields
// its ERROR record on time.
func (c *Coordinator) runOne(ctx context.Context, doc model.Document) model.Record {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.metrics != nil {
		c.metrics.InFlight.Inc()
		defer c.metrics.InFlight.Dec()
	}

	start := time.Now()
	outcomes := make(chan record.Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcomes <- record.Failed(doc.FileID, eris.Errorf("batch: panic building %s: %v", doc.FileID, r))
			}
		}()
		outcomes <- c.builder.Build(tctx, doc)
	}()

	var out record.Outcome
	select {
	case out = <-outcomes:
	case <-tctx.Done():
		out = record.Failed(doc.FileID, eris.Wrapf(record.ErrTimeout, "%s after %s", doc.FileID, c.timeout))
	}

	rec := out.Final()
	elapsed := time.Since(start)

	log := zap.L().With(zap.String("file", doc.FileID))
	if out.Err != nil {
		log.Error("batch: document failed", zap.Error(out.Err), zap.Duration("elapsed", elapsed))
	} else {
		log.Debug("batch: document complete",
			zap.Int("photos", rec.PhotoCount),
			zap.String("regularized", string(rec.Regularized)),
			zap.Duration("elapsed", elapsed),
		)
	}

	if c.metrics != nil {
		c.metrics.ObserveDocument(rec.Status, elapsed)
	}
	return rec
}

// checkDuplicatePaths rejects two documents pointing at the same file.
// Documents without a path are keyed by file id.
func checkDuplicatePaths(docs []model.Document) error {
	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		key := doc.FileID
		if doc.Path != "" {
			key = doc.Path
			if abs, err := filepath.Abs(doc.Path); err == nil {
				key = abs
			}
		}
		if prev, ok := seen[key]; ok {
			return eris.Errorf("batch: duplicate input %s (files %s and %s)", key, prev, doc.FileID)
		}
		seen[key] = doc.FileID
	}
	return nil
}

// warnDuplicateContent logs documents whose bytes are identical. They are
// still processed; the report will simply list both.
func warnDuplicateContent(docs []model.Document) {
	seen := make(map[uint64]string, len(docs))
	for _, doc := range docs {
		if doc.Path == "" {
			continue
		}
		sum, err := scratch.FileFingerprint(doc.Path)
		if err != nil {
			continue
		}
		if prev, ok := seen[sum]; ok {
			zap.L().Warn("batch: duplicate document content",
				zap.String("file", doc.FileID),
				zap.String("same_as", prev),
			)
			continue
		}
		seen[sum] = doc.FileID
	}
}
