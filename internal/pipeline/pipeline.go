package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/seoaudit/internal/model"
)

// Step fills one data source of a page.
//
// A source that has no data for the page leaves its field nil and returns nil.
// A returned error means the source failed; the page keeps whatever the
// previous steps collected.
type Step interface {
	Do(ctx context.Context, page *model.Page) error
	Name() string
}

// StepError records which step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result is the outcome of running the pipeline for one URL.
type Result struct {
	Page *model.Page

	// Performed lists the steps that ran, in order, including failed ones.
	Performed []string

	// Errors holds one StepError per failed step.
	Errors []error
}

// Err joins all step errors, or returns nil when every step succeeded.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

// Pipeline runs steps in sequence against a page.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after one fails.
// Sources are independent, so the audit command enables this.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline with the given steps.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  steps,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute creates a page for pageURL and runs every step against it.
// The returned error is non-nil only when the context was cancelled.
func (p *Pipeline) Execute(ctx context.Context, pageURL string) (*Result, error) {
	result := &Result{Page: &model.Page{URL: pageURL}}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "url", pageURL, "reason", err)
			return result, err
		}

		result.Performed = append(result.Performed, step.Name())
		if err := step.Do(ctx, result.Page); err != nil {
			p.logger.Warn("step failed", "step", step.Name(), "url", pageURL, "error", err)
			result.Errors = append(result.Errors, &StepError{Step: step.Name(), Err: err})
			if !p.continueOnError {
				break
			}
			continue
		}
		p.logger.Debug("step completed", "step", step.Name(), "url", pageURL)
	}
	return result, nil
}
