package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor collects many URLs concurrently.
type BatchProcessor struct {
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of URLs processed at once.
// Default is 10.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. Steps must be safe for
// concurrent use because one pipeline serves every URL.
func NewBatchProcessor(p *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipeline:    p,
		concurrency: 10,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(bp)
	}
	return bp
}

// ProcessBatch runs the pipeline for every URL. Results are in input order.
// Step failures are recorded per result; the error is non-nil only when ctx
// is cancelled, in which case unfinished URLs have nil results.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*Result, error) {
	bp.logger.Info("collecting pages", "total", len(urls), "concurrency", bp.concurrency)
	start := time.Now()

	results := make([]*Result, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bp.logger.Debug("collecting page", "url", u, "index", i+1, "total", len(urls))

			result, err := bp.pipeline.Execute(gctx, u)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("collection complete", "total", len(urls), "elapsed", time.Since(start))
	return results, err
}

// ProcessBatchWithCallback runs the pipeline for every URL and calls
// callback as each one finishes. callback runs on worker goroutines.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(result *Result, index int),
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := bp.pipeline.Execute(gctx, u)
			if err != nil {
				return err
			}
			callback(result, i)
			return nil
		})
	}
	return g.Wait()
}

// Pages returns the pages of the finished results, skipping nil entries.
func Pages(results []*Result) []*model.Page {
	pages := make([]*model.Page, 0, len(results))
	for _, r := range results {
		if r != nil && r.Page != nil {
			pages = append(pages, r.Page)
		}
	}
	return pages
}

// FailureCounts counts step failures by step name.
func FailureCounts(results []*Result) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, err := range r.Errors {
			var se *StepError
			if errors.As(err, &se) {
				counts[se.Step]++
			}
		}
	}
	return counts
}
