// Package engine runs the document pipeline: scan and classify, validate
// in parallel, analyze the corpus for conflicts, optionally fix, then
// record outcomes in the cache.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fulmenhq/docneat/internal/cache"
	"github.com/fulmenhq/docneat/internal/changes"
	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/fix"
	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/internal/validate"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/frontmatter"
	"github.com/fulmenhq/docneat/pkg/ignore"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// Options selects what a run does.
type Options struct {
	Force     bool
	Tags      []string
	Conflicts bool
	Fix       bool
	Preview   bool
	// MinSeverity filters reported issues; FailOn decides Failed.
	MinSeverity issue.Severity
	FailOn      issue.Severity
}

// Engine owns the per-root collaborators. It is safe to Run repeatedly.
type Engine struct {
	cfg       *config.Config
	root      string
	log       *logger.Logger
	store     *cache.Store
	detector  *changes.Detector
	runner    *validate.Runner
	conflicts *conflicts.Detector
	fixer     *fix.Fixer
	accessor  *frontmatter.Accessor
	matcher   *ignore.Matcher
}

// ResolvePath makes a configured path absolute against root.
func ResolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// New wires an engine for root. The cache is opened immediately; a corrupt
// cache file is returned as *cache.Error.
func New(cfg *config.Config, root string, log *logger.Logger) (*Engine, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	store, err := cache.Open(ResolvePath(abs, cfg.Processing.CacheFile), log)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		root:      abs,
		log:       log.With("engine"),
		store:     store,
		detector:  changes.NewDetector(store, abs, log),
		runner:    validate.NewRunner(cfg, abs, log),
		conflicts: conflicts.FromConfig(cfg, log),
		fixer:     fix.New(fix.OptionsFromConfig(cfg, abs), log),
		accessor:  frontmatter.NewAccessor(cfg.Metadata.Delimiter),
	}
	if cfg.Processing.UseIgnoreFiles {
		m, err := ignore.NewMatcher(abs)
		if err != nil {
			return nil, err
		}
		e.matcher = m
	}
	return e, nil
}

// Root returns the absolute scan root.
func (e *Engine) Root() string { return e.root }

// Store exposes the cache for stats and clearing.
func (e *Engine) Store() *cache.Store { return e.store }

// Scan lists the documents under the root.
func (e *Engine) Scan() ([]string, error) {
	return changes.Scan(e.root, changes.ScanOptions{
		Include: e.cfg.Processing.Include,
		Exclude: e.cfg.Processing.Exclude,
		Ignore:  e.matcher,
	})
}

// Conflicts runs only the corpus-wide analysis over every scanned document.
func (e *Engine) Conflicts() (conflicts.Report, []string, error) {
	paths, err := e.Scan()
	if err != nil {
		return nil, nil, err
	}
	return e.conflicts.Detect(paths), paths, nil
}

// Run executes one pass of the pipeline.
func (e *Engine) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	if opts.MinSeverity == "" {
		opts.MinSeverity = issue.SeverityInfo
	}
	if opts.FailOn == "" {
		opts.FailOn = issue.SeverityError
	}
	rep := &Report{
		RunID:       uuid.NewString(),
		Root:        e.root,
		StartedAt:   start.UTC(),
		Results:     map[string][]issue.Issue{},
		MinSeverity: opts.MinSeverity,
		FailOn:      opts.FailOn,
	}
	log := e.log
	log.Info("starting run", logger.String("run_id", rep.RunID), logger.String("root", e.root), logger.Bool("force", opts.Force))

	scanned, err := e.Scan()
	if err != nil {
		return nil, err
	}
	rep.Scanned = scanned

	class, err := e.detector.Classify(scanned, opts.Force)
	if err != nil {
		log.Error("purging deleted cache entries failed", logger.Err(err))
	}
	rep.Changes = class.Counts()
	rep.Deleted = class.Deleted

	toProcess := class.ToProcess()
	if len(opts.Tags) > 0 {
		toProcess, rep.Skipped = e.filterByTags(toProcess, opts.Tags)
	}
	rep.Processed = toProcess

	results, err := e.runner.Run(ctx, toProcess)
	if err != nil {
		return nil, err
	}

	if opts.Conflicts {
		rep.Conflicts = e.conflicts.Detect(scanned)
	}

	if opts.Fix {
		fixes, err := e.fixer.FixAll(ctx, results, opts.Preview)
		rep.Fixes = fixes
		if err != nil {
			return nil, err
		}
		if !opts.Preview {
			for _, r := range fixes {
				if r.Success && len(r.Fixes) > 0 {
					results[r.Path] = e.runner.ValidateOne(r.Path)
				}
			}
		}
	}

	rep.Renames = e.renameSuggestions(toProcess)

	for _, p := range toProcess {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues := results[p]
		errs, warns := issue.Count(issues)
		status := cache.StatusPassed
		if errs > 0 {
			status = cache.StatusFailed
		}
		if err := e.detector.RecordOutcome(p, status, errs, warns); err != nil {
			log.Error("cache update failed, skipping document", logger.String("path", p), logger.Err(err))
		}
		filtered := issue.Filter(issues, opts.MinSeverity)
		issue.Sort(filtered)
		rep.Results[p] = filtered
	}

	rep.Duration = time.Since(start)
	rep.summarize()
	log.Info("run complete",
		logger.String("run_id", rep.RunID),
		logger.Int("scanned", rep.Summary.Scanned),
		logger.Int("processed", rep.Summary.Processed),
		logger.Int("failed", rep.Summary.Failed),
		logger.Duration("duration", rep.Duration))
	return rep, nil
}

// renameSuggestions asks the enabled naming validator for convention-conforming
// names of the processed documents.
func (e *Engine) renameSuggestions(paths []string) map[string]string {
	for _, v := range e.runner.Validators() {
		if nv, ok := v.(*validate.NamingValidator); ok && nv.Enabled() {
			if renames := nv.RenameSuggestions(paths); len(renames) > 0 {
				return renames
			}
		}
	}
	return nil
}

// filterByTags keeps documents whose tags intersect filter, case-insensitively.
func (e *Engine) filterByTags(paths, filter []string) (kept, skipped []string) {
	want := make([]string, 0, len(filter))
	for _, t := range filter {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want = append(want, t)
		}
	}
	for _, p := range paths {
		meta, err := e.accessor.Parse(p)
		if err != nil {
			e.log.Debug("tag filter could not read metadata", logger.String("path", p), logger.Err(err))
			skipped = append(skipped, p)
			continue
		}
		match := false
		for _, tag := range meta.Strings("tags") {
			if slices.Contains(want, strings.ToLower(tag)) {
				match = true
				break
			}
		}
		if match {
			kept = append(kept, p)
		} else {
			skipped = append(skipped, p)
		}
	}
	sort.Strings(kept)
	return kept, skipped
}
