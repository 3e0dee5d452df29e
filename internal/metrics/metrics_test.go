package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/fix"
	"github.com/fulmenhq/docneat/internal/issue"
)

func sampleReport() *engine.Report {
	return &engine.Report{
		StartedAt: time.Unix(1700000000, 0),
		Duration:  2 * time.Second,
		Results: map[string][]issue.Issue{
			"a.md": {{Code: issue.CodeMetadataMissing, Severity: issue.SeverityError}},
		},
		Conflicts: conflicts.Report{conflicts.CategoryTags: {{Code: issue.CodeConflictTags}}},
		Fixes:     []fix.Result{{Success: true}, {Success: false}},
		Summary:   engine.Summary{Scanned: 3, Processed: 1, Failed: 1, Errors: 1},
	}
}

func gauge(t *testing.T, r *Recorder, name, label, value string) float64 {
	t.Helper()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{%s=%q} not found", name, label, value)
	return 0
}

func TestObserve(t *testing.T) {
	r := New()
	r.Observe(sampleReport())

	assert.Equal(t, 3.0, gauge(t, r, "docneat_documents", "class", "scanned"))
	assert.Equal(t, 1.0, gauge(t, r, "docneat_documents", "class", "failed"))
	assert.Equal(t, 1.0, gauge(t, r, "docneat_issues", "severity", "error"))
	assert.Equal(t, 1.0, gauge(t, r, "docneat_rule_violations", "code", "YAML-001"))
	assert.Equal(t, 1.0, gauge(t, r, "docneat_conflicts", "category", "tags"))
	assert.Equal(t, 0.0, gauge(t, r, "docneat_conflicts", "category", "pricing"))
	assert.Equal(t, 1.0, gauge(t, r, "docneat_fixes", "outcome", "failed"))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Observe(sampleReport())
	path := filepath.Join(t.TempDir(), "out", "docneat.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `docneat_documents{class="scanned"} 3`)
	assert.Contains(t, string(data), "docneat_runs_total 1")
	assert.Contains(t, string(data), "docneat_run_duration_seconds 2")
}
