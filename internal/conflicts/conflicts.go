// Package conflicts finds disagreements that only show up when documents
// are compared with each other: inconsistent status values, tag synonyms,
// contradicting prices and links into deprecated material.
package conflicts

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/internal/mdscan"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/frontmatter"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// Report categories.
const (
	CategoryStatus          = "status"
	CategoryTags            = "tags"
	CategoryPricing         = "pricing"
	CategoryCrossReferences = "cross_references"
)

// Categories lists report categories in presentation order.
var Categories = []string{CategoryStatus, CategoryTags, CategoryPricing, CategoryCrossReferences}

// Report maps a category to its findings.
type Report map[string][]issue.Issue

// Total counts findings across categories.
func (r Report) Total() int {
	n := 0
	for _, issues := range r {
		n += len(issues)
	}
	return n
}

// Issues flattens the report in category order.
func (r Report) Issues() []issue.Issue {
	var out []issue.Issue
	for _, c := range Categories {
		out = append(out, r[c]...)
	}
	return out
}

type document struct {
	path  string
	abs   string
	meta  *frontmatter.Metadata
	body  string
	lines []mdscan.Line
}

func (d document) status() (string, bool) {
	return d.meta.String("status")
}

// Detector runs the corpus-wide analyses.
type Detector struct {
	cfg     config.ConflictsConfig
	allowed []string
	delim   string
	log     *logger.Logger
}

// NewDetector builds a detector. allowed is the status allow-list shared
// with the metadata validator.
func NewDetector(cfg config.ConflictsConfig, allowed []string, delim string, log *logger.Logger) *Detector {
	return &Detector{cfg: cfg, allowed: allowed, delim: delim, log: log.With("conflicts")}
}

// FromConfig wires a detector from the full configuration.
func FromConfig(cfg *config.Config, log *logger.Logger) *Detector {
	return NewDetector(cfg.Validation.Conflicts, cfg.Validation.YAML.AllowedStatuses, cfg.Metadata.Delimiter, log)
}

// Detect analyzes paths. Unreadable documents are skipped and documents
// with malformed metadata are analyzed with empty metadata.
func (d *Detector) Detect(paths []string) Report {
	report := Report{}
	if !d.cfg.Enabled {
		d.log.Debug("conflict detection disabled")
		return report
	}
	docs := d.load(paths)
	d.log.Info("analyzing documents for conflicts", logger.Int("documents", len(docs)))

	if d.cfg.Checks.Status {
		report[CategoryStatus] = d.statusConflicts(docs)
	}
	if d.cfg.Checks.Tags {
		report[CategoryTags] = d.tagConflicts(docs)
	}
	if d.cfg.Checks.Pricing {
		report[CategoryPricing] = d.pricingConflicts(docs)
	}
	if d.cfg.Checks.CrossReferences {
		report[CategoryCrossReferences] = d.crossReferenceConflicts(docs)
	}

	d.log.Info("conflict analysis complete", logger.Int("conflicts", report.Total()))
	return report
}

func (d *Detector) load(paths []string) []document {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	docs := make([]document, 0, len(sorted))
	for _, p := range sorted {
		content, err := os.ReadFile(p) // #nosec G304 -- scanned document path
		if err != nil {
			d.log.Warn("skipping unreadable document", logger.String("path", p), logger.Err(err))
			continue
		}
		meta, _, err := frontmatter.Decode(content, d.delim)
		if errors.Is(err, frontmatter.ErrNoBlock) {
			meta = frontmatter.NewMetadata()
		} else if err != nil {
			d.log.Warn("could not parse metadata", logger.String("path", p), logger.Err(err))
			meta = frontmatter.NewMetadata()
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		docs = append(docs, document{
			path:  p,
			abs:   abs,
			meta:  meta,
			body:  string(content),
			lines: mdscan.Split(content, d.delim),
		})
	}
	return docs
}
