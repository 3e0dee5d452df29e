package validate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// Runner applies every enabled validator to a set of documents.
type Runner struct {
	validators []Validator
	workers    int
	log        *logger.Logger
}

// NewRunner wires the metadata, naming and markdown validators from cfg.
// root scopes the directory-name checks.
func NewRunner(cfg *config.Config, root string, log *logger.Logger) *Runner {
	delim := cfg.Metadata.Delimiter
	return NewRunnerWith(
		WorkerCount(cfg.Processing.Concurrency, cfg.Processing.ConcurrencyPercent),
		log,
		NewMetadataValidator(cfg.Validation.YAML, delim, log),
		NewNamingValidator(cfg.Validation.Naming, root, log),
		NewMarkdownValidator(cfg.Validation.Markdown, delim, log),
	)
}

// NewRunnerWith builds a runner over explicit validators, applied in order.
func NewRunnerWith(workers int, log *logger.Logger, validators ...Validator) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{validators: validators, workers: workers, log: log.With("validate")}
}

// Validators returns the configured validators in application order.
func (r *Runner) Validators() []Validator { return r.validators }

// ValidateOne runs every enabled validator over path.
func (r *Runner) ValidateOne(path string) []issue.Issue {
	var out []issue.Issue
	for _, v := range r.validators {
		if !v.Enabled() {
			continue
		}
		out = append(out, v.Validate(path)...)
	}
	return out
}

// Run validates paths in parallel. Every path gets an entry, empty when the
// document passed. Cancellation stops scheduling new documents.
func (r *Runner) Run(ctx context.Context, paths []string) (map[string][]issue.Issue, error) {
	results := make(map[string][]issue.Issue, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found := r.ValidateOne(p)
			mu.Lock()
			results[p] = found
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	r.log.Debug("validation complete", logger.Int("documents", len(results)), logger.Int("workers", r.workers))
	return results, nil
}
