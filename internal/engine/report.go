package engine

import (
	"sort"
	"time"

	"github.com/fulmenhq/docneat/internal/changes"
	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/fix"
	"github.com/fulmenhq/docneat/internal/issue"
)

// Summary aggregates a run.
type Summary struct {
	Scanned   int `json:"scanned"`
	Processed int `json:"processed"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Info      int `json:"info"`
	Conflicts int `json:"conflicts"`
	Fixed     int `json:"fixed"`
}

// RuleCount is the number of issues for one rule code.
type RuleCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Report is the outcome of one run.
type Report struct {
	RunID     string        `json:"run_id"`
	Root      string        `json:"root"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	Scanned   []string                 `json:"-"`
	Processed []string                 `json:"-"`
	Skipped   []string                 `json:"skipped,omitempty"`
	Deleted   []string                 `json:"deleted,omitempty"`
	Changes   changes.Counts           `json:"changes"`
	Results   map[string][]issue.Issue `json:"results"`
	Conflicts conflicts.Report         `json:"conflicts,omitempty"`
	Fixes     []fix.Result             `json:"fixes,omitempty"`
	Renames   map[string]string        `json:"renames,omitempty"`
	Summary   Summary                  `json:"summary"`

	MinSeverity issue.Severity `json:"min_severity"`
	FailOn      issue.Severity `json:"fail_on"`
}

func (r *Report) summarize() {
	s := Summary{Scanned: len(r.Scanned), Processed: len(r.Processed)}
	for _, issues := range r.Results {
		failed := false
		for _, is := range issues {
			switch is.Severity {
			case issue.SeverityError:
				s.Errors++
				failed = true
			case issue.SeverityWarning:
				s.Warnings++
			case issue.SeverityInfo:
				s.Info++
			}
		}
		if failed {
			s.Failed++
		} else {
			s.Passed++
		}
	}
	s.Conflicts = r.Conflicts.Total()
	for _, f := range r.Fixes {
		if f.Success && len(f.Fixes) > 0 {
			s.Fixed++
		}
	}
	r.Summary = s
}

// Paths returns the processed paths in order.
func (r *Report) Paths() []string {
	out := make([]string, 0, len(r.Results))
	for p := range r.Results {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RenamePaths returns the documents with a suggested rename, sorted.
func (r *Report) RenamePaths() []string {
	out := make([]string, 0, len(r.Renames))
	for p := range r.Renames {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// FailedPaths returns processed paths with at least one error.
func (r *Report) FailedPaths() []string {
	var out []string
	for _, p := range r.Paths() {
		if errs, _ := issue.Count(r.Results[p]); errs > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Rules counts issues per rule code, most frequent first.
func (r *Report) Rules() []RuleCount {
	counts := map[string]int{}
	for _, issues := range r.Results {
		for _, is := range issues {
			counts[is.Code]++
		}
	}
	out := make([]RuleCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, RuleCount{Code: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// AllIssues flattens document and conflict issues.
func (r *Report) AllIssues() []issue.Issue {
	var out []issue.Issue
	for _, p := range r.Paths() {
		out = append(out, r.Results[p]...)
	}
	return append(out, r.Conflicts.Issues()...)
}

// Failed reports whether any issue reaches the FailOn threshold.
func (r *Report) Failed() bool {
	return ExceedsThreshold(r.AllIssues(), r.FailOn)
}

// ExceedsThreshold reports whether any issue is admitted by failOn.
func ExceedsThreshold(issues []issue.Issue, failOn issue.Severity) bool {
	for _, is := range issues {
		if issue.Admits(failOn, is.Severity) {
			return true
		}
	}
	return false
}
