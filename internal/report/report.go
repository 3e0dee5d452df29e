// Package report renders run results as console text, markdown, JSON or
// JUnit XML.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/fix"
)

// Format selects a renderer.
type Format string

const (
	FormatConsole  Format = "console"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatJUnit    Format = "junit"
)

// Formats lists every supported format.
var Formats = []Format{FormatConsole, FormatMarkdown, FormatJSON, FormatJUnit}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q (want console, markdown, json or junit)", s)
}

// Options tunes rendering.
type Options struct {
	Color bool
	// Now stamps generated reports; time.Now when nil.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// ConflictSet is a conflict report with the size of the analyzed corpus.
type ConflictSet struct {
	Report    conflicts.Report
	Documents int
}

// FixSet is the outcome of a fix pass.
type FixSet struct {
	Results []fix.Result
	Preview bool
}

// Validation renders a validation run.
func Validation(w io.Writer, f Format, rep *engine.Report, opts Options) error {
	switch f {
	case FormatConsole:
		return consoleValidation(w, rep, opts)
	case FormatMarkdown:
		return markdownValidation(w, rep, opts)
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatJUnit:
		return junitValidation(w, rep)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// Conflicts renders a conflict report.
func Conflicts(w io.Writer, f Format, set ConflictSet, opts Options) error {
	switch f {
	case FormatConsole:
		return consoleConflicts(w, set, opts)
	case FormatMarkdown:
		return markdownConflicts(w, set, opts)
	case FormatJSON:
		return writeJSON(w, conflictJSON{Documents: set.Documents, Total: set.Report.Total(), Conflicts: set.Report})
	case FormatJUnit:
		return junitConflicts(w, set)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// Fixes renders fixer results.
func Fixes(w io.Writer, f Format, set FixSet, opts Options) error {
	switch f {
	case FormatConsole:
		return consoleFixes(w, set, opts)
	case FormatMarkdown:
		return markdownFixes(w, set)
	case FormatJSON:
		return writeJSON(w, fixJSON{Preview: set.Preview, Results: set.Results})
	case FormatJUnit:
		return fmt.Errorf("junit output is not available for fix reports")
	}
	return fmt.Errorf("unsupported format %q", f)
}

func fixCounts(results []fix.Result) (ok, failed int) {
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
