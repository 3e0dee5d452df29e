package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/fix"
	"github.com/fulmenhq/docneat/internal/issue"
)

var fixedNow = func() time.Time { return time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC) }

func sampleReport() *engine.Report {
	root := filepath.Join(string(filepath.Separator), "docs")
	bad := filepath.Join(root, "guides", "bad-doc.md")
	good := filepath.Join(root, "good-doc.md")
	rep := &engine.Report{
		RunID:     "run-1",
		Root:      root,
		StartedAt: fixedNow(),
		Duration:  1500 * time.Millisecond,
		Scanned:   []string{bad, good},
		Processed: []string{bad, good},
		Results: map[string][]issue.Issue{
			bad: {
				{Code: issue.CodeMetadataMissing, Severity: issue.SeverityError, Message: "metadata block is missing", File: bad, Line: 1, Suggestion: "add a block"},
				{Code: issue.CodeTrailingSpace, Severity: issue.SeverityInfo, Message: "trailing whitespace", File: bad, Line: 4},
			},
			good: {},
		},
		FailOn: issue.SeverityError,
		Summary: engine.Summary{
			Scanned: 2, Processed: 2, Passed: 1, Failed: 1, Errors: 1, Info: 1,
		},
	}
	return rep
}

func TestParseFormat(t *testing.T) {
	for _, f := range []string{"console", "MARKDOWN", " json ", "junit"} {
		_, err := ParseFormat(f)
		assert.NoError(t, err, f)
	}
	_, err := ParseFormat("html")
	assert.Error(t, err)
}

func TestConsoleValidation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Validation(&buf, FormatConsole, sampleReport(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "Document Validation Summary")
	assert.Contains(t, out, "Failed:     1")
	assert.Contains(t, out, "guides/bad-doc.md")
	assert.Contains(t, out, "[ERROR] YAML-001:1 metadata block is missing")
	assert.Contains(t, out, "Result: FAILED")
	assert.NotContains(t, out, "\x1b[", "no color codes without Color")
}

func TestValidationListsSuggestedRenames(t *testing.T) {
	rep := sampleReport()
	from := filepath.Join(rep.Root, "guides", "Bad Doc.md")
	rep.Renames = map[string]string{from: filepath.Join(rep.Root, "guides", "bad-doc.md")}

	var buf bytes.Buffer
	require.NoError(t, Validation(&buf, FormatConsole, rep, Options{}))
	assert.Contains(t, buf.String(), "Suggested renames:\n  guides/Bad Doc.md → guides/bad-doc.md\n")

	buf.Reset()
	require.NoError(t, Validation(&buf, FormatMarkdown, rep, Options{Now: fixedNow}))
	assert.Contains(t, buf.String(), "## Suggested Renames")
	assert.Contains(t, buf.String(), "| `guides/Bad Doc.md` | `guides/bad-doc.md` |")

	buf.Reset()
	require.NoError(t, Validation(&buf, FormatJSON, rep, Options{}))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string]any{from: filepath.Join(rep.Root, "guides", "bad-doc.md")}, decoded["renames"])
}

func TestConsoleColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Validation(&buf, FormatConsole, sampleReport(), Options{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestBoxAlignsWideRunes(t *testing.T) {
	out := box([]string{"ab", "日本"})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "│ ab   │", lines[1])
	assert.Equal(t, "│ 日本 │", lines[2])
}

func TestMarkdownValidation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Validation(&buf, FormatMarkdown, sampleReport(), Options{Now: fixedNow}))
	out := buf.String()

	assert.Contains(t, out, "# Document Validation Report")
	assert.Contains(t, out, "`run-1`")
	assert.Contains(t, out, "| Failed | 1 |")
	assert.Contains(t, out, "| YAML-001 | 1 |")
	assert.Contains(t, out, "### `guides/bad-doc.md`")
	assert.Contains(t, out, "- **ERROR** `YAML-001` (line 1): metadata block is missing")
	assert.NotContains(t, out, "good-doc.md")
}

func TestJSONValidation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Validation(&buf, FormatJSON, sampleReport(), Options{}))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["failed"])
}

func TestJUnitValidation(t *testing.T) {
	var buf bytes.Buffer
	rep := sampleReport()
	rep.Conflicts = conflicts.Report{
		conflicts.CategoryTags:   {{Code: issue.CodeConflictTags, Severity: issue.SeverityWarning, Message: "tag synonym conflict"}},
		conflicts.CategoryStatus: nil,
	}
	require.NoError(t, Validation(&buf, FormatJUnit, rep, Options{}))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	suites := doc.FindElements("//testsuite")
	require.Len(t, suites, 2)
	assert.Equal(t, "2", suites[0].SelectAttrValue("tests", ""))
	assert.Equal(t, "1", suites[0].SelectAttrValue("failures", ""))
	assert.Len(t, doc.FindElements("//testsuite[@name='docneat.validation']/testcase/failure"), 1)
	assert.Equal(t, "1", suites[1].SelectAttrValue("failures", ""))
	assert.Equal(t, "2", suites[1].SelectAttrValue("tests", ""))
}

func conflictSet() ConflictSet {
	return ConflictSet{Documents: 3, Report: conflicts.Report{
		conflicts.CategoryStatus: {{Code: issue.CodeConflictStatus, Severity: issue.SeverityWarning,
			Message: "status value has case variations: Draft, draft", File: "/d/a.md", Suggestion: "standardize to lowercase: 'draft'"}},
		conflicts.CategoryPricing: {},
	}}
}

func TestConsoleConflicts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Conflicts(&buf, FormatConsole, conflictSet(), Options{}))
	out := buf.String()
	assert.Contains(t, out, "CONFLICT DETECTION REPORT")
	assert.Contains(t, out, "Total conflicts found: 1")
	assert.Contains(t, out, "STATUS CONFLICTS (1):")
	assert.Contains(t, out, "[CONFLICT-001] a.md")
	assert.NotContains(t, out, "PRICING CONFLICTS")
}

func TestMarkdownConflicts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Conflicts(&buf, FormatMarkdown, conflictSet(), Options{Now: fixedNow}))
	out := buf.String()
	assert.Contains(t, out, "## status (1)")
	assert.Contains(t, out, "## pricing (0)")
	assert.Contains(t, out, "No conflicts.")
	assert.Contains(t, out, "'draft'")
}

func TestFixReports(t *testing.T) {
	set := FixSet{Preview: true, Results: []fix.Result{
		{Path: "a.md", Preview: true, Success: true, Fixes: []string{"added metadata block"}},
		{Path: "b.md", Success: false, Errors: []string{"file not found: b.md"}, Fixes: []string{}},
	}}

	var console bytes.Buffer
	require.NoError(t, Fixes(&console, FormatConsole, set, Options{}))
	assert.Contains(t, console.String(), "Auto-fix (preview): 2 document(s), 1 succeeded, 1 failed")
	assert.Contains(t, console.String(), "[PREVIEW] a.md")

	var md bytes.Buffer
	require.NoError(t, Fixes(&md, FormatMarkdown, set, Options{}))
	assert.Contains(t, md.String(), "- **Mode:** preview")
	assert.Contains(t, md.String(), "- added metadata block")
	assert.Contains(t, md.String(), "- **error:** file not found: b.md")

	var js bytes.Buffer
	require.NoError(t, Fixes(&js, FormatJSON, set, Options{}))
	assert.Contains(t, js.String(), `"preview": true`)

	assert.Error(t, Fixes(&bytes.Buffer{}, FormatJUnit, set, Options{}))
}
