// Package metrics exports per-run counters in the Prometheus text format so
// a node exporter textfile collector can pick them up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/issue"
)

const namespace = "docneat"

// Recorder holds the gauges for the most recent run.
type Recorder struct {
	reg       *prometheus.Registry
	documents *prometheus.GaugeVec
	issues    *prometheus.GaugeVec
	rules     *prometheus.GaugeVec
	conflicts *prometheus.GaugeVec
	fixes     *prometheus.GaugeVec
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
	runs      prometheus.Counter
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		documents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "documents",
			Help: "Documents in the last run by class.",
		}, []string{"class"}),
		issues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "issues",
			Help: "Issues reported in the last run by severity.",
		}, []string{"severity"}),
		rules: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "rule_violations",
			Help: "Issues reported in the last run by rule code.",
		}, []string{"code"}),
		conflicts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "conflicts",
			Help: "Cross-document conflicts in the last run by category.",
		}, []string{"category"}),
		fixes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "fixes",
			Help: "Auto-fix results in the last run by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Unix time the last run started.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total",
			Help: "Runs observed by this process.",
		}),
	}
	r.reg.MustRegister(r.documents, r.issues, r.rules, r.conflicts, r.fixes, r.duration, r.lastRun, r.runs)
	return r
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// Observe replaces the gauges with the values of rep.
func (r *Recorder) Observe(rep *engine.Report) {
	s := rep.Summary
	r.documents.Reset()
	for class, n := range map[string]int{
		"scanned":   s.Scanned,
		"processed": s.Processed,
		"passed":    s.Passed,
		"failed":    s.Failed,
		"new":       rep.Changes.New,
		"modified":  rep.Changes.Modified,
		"unchanged": rep.Changes.Unchanged,
		"deleted":   rep.Changes.Deleted,
		"skipped":   len(rep.Skipped),
	} {
		r.documents.WithLabelValues(class).Set(float64(n))
	}

	r.issues.Reset()
	r.issues.WithLabelValues(string(issue.SeverityError)).Set(float64(s.Errors))
	r.issues.WithLabelValues(string(issue.SeverityWarning)).Set(float64(s.Warnings))
	r.issues.WithLabelValues(string(issue.SeverityInfo)).Set(float64(s.Info))

	r.rules.Reset()
	for _, rc := range rep.Rules() {
		r.rules.WithLabelValues(rc.Code).Set(float64(rc.Count))
	}

	r.conflicts.Reset()
	if rep.Conflicts != nil {
		for _, c := range conflicts.Categories {
			r.conflicts.WithLabelValues(c).Set(float64(len(rep.Conflicts[c])))
		}
	}

	r.fixes.Reset()
	if len(rep.Fixes) > 0 {
		ok, failed := 0, 0
		for _, f := range rep.Fixes {
			if f.Success {
				ok++
			} else {
				failed++
			}
		}
		r.fixes.WithLabelValues("succeeded").Set(float64(ok))
		r.fixes.WithLabelValues("failed").Set(float64(failed))
	}

	r.duration.Set(rep.Duration.Seconds())
	r.lastRun.Set(float64(rep.StartedAt.Unix()))
	r.runs.Inc()
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
