package fix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/internal/validate"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/frontmatter"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// docs are written under a fixed subdirectory of the temp root so tag
// derivation never sees the temp directory name.
func setup(t *testing.T) (root string, fixer *Fixer, runner *validate.Runner) {
	t.Helper()
	root = t.TempDir()
	cfg := config.Default()
	fixer = New(OptionsFromConfig(cfg, root), logger.Nop())
	fixer.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC) }
	return root, fixer, validate.NewRunner(cfg, root, logger.Nop())
}

func writeDoc(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCanFix(t *testing.T) {
	for _, code := range []string{issue.CodeMetadataMissing, issue.CodeFieldsMissing, issue.CodeTagsNotList} {
		assert.True(t, CanFix(issue.Issue{Code: code}), code)
	}
	for _, code := range []string{issue.CodeStatusInvalid, issue.CodeMetadataMalformed, issue.CodeNameUppercase, issue.CodeConflictTags} {
		assert.False(t, CanFix(issue.Issue{Code: code}), code)
	}
}

func TestPreviewMissingBlock(t *testing.T) {
	root, fixer, runner := setup(t)
	original := "# My Title\n\nSome content here.\n"
	path := writeDoc(t, root, "guide-notes.md", original)

	issues := runner.ValidateOne(path)
	require.True(t, issue.HasCode(issues, issue.CodeMetadataMissing))

	res := fixer.Fix(path, Fixable(issues), true)
	assert.True(t, res.Success)
	assert.True(t, res.Preview)
	assert.Equal(t, []string{
		"added metadata block",
		"added title from heading: 'My Title'",
		"added default tags",
		"added default status: draft",
	}, res.Fixes)
	assert.Empty(t, res.BackupPath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "preview never writes")
}

func TestApplyRoundTrip(t *testing.T) {
	root, fixer, runner := setup(t)
	body := "# My *Fancy* Title\n\nKeep   this  body\r\nexactly.\n"
	path := writeDoc(t, root, "guide-notes.md", body)

	res := fixer.Fix(path, Fixable(runner.ValidateOne(path)), false)
	require.True(t, res.Success, res.Errors)
	assert.Contains(t, res.Fixes, "added title from heading: 'My Fancy Title'")

	expectedBackup := filepath.Join(root, "_meta", ".backups", "guide-notes_20250601_123045.md")
	assert.Equal(t, expectedBackup, res.BackupPath)
	saved, err := os.ReadFile(expectedBackup)
	require.NoError(t, err)
	assert.Equal(t, body, string(saved))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	blk, ok := frontmatter.Split(data, "---")
	require.True(t, ok)
	assert.Equal(t, body, string(blk.Body))

	after := runner.ValidateOne(path)
	assert.False(t, issue.HasCode(after, issue.CodeFieldsMissing))
	assert.False(t, issue.HasCode(after, issue.CodeMetadataMissing))
}

func TestMissingFieldsFromIssueFields(t *testing.T) {
	root, fixer, runner := setup(t)
	path := writeDoc(t, root, "billing/refund-flow.md", "---\ntitle: Refunds\n---\nbody\n")

	issues := runner.ValidateOne(path)
	res := fixer.Fix(path, Fixable(issues), false)
	require.True(t, res.Success)
	assert.Equal(t, []string{"added tags from path: billing", "added default status: draft"}, res.Fixes)

	meta, err := frontmatter.NewAccessor("").Parse(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "tags", "status"}, meta.Keys())
	assert.Equal(t, []string{"billing"}, meta.Strings("tags"))
}

func TestExtraRequiredFieldGetsEmptyValue(t *testing.T) {
	root, fixer, _ := setup(t)
	path := writeDoc(t, root, "notes/owner-doc.md", "---\ntitle: T\ntags: [a]\nstatus: draft\n---\n")
	res := fixer.Fix(path, []issue.Issue{{Code: issue.CodeFieldsMissing, Fields: []string{"owner"}}}, true)
	assert.Equal(t, []string{"added empty field: owner"}, res.Fixes)
}

func TestScalarTagsConverted(t *testing.T) {
	root, fixer, runner := setup(t)
	path := writeDoc(t, root, "notes/scalar-tags.md", "---\ntitle: T\ntags: onboarding\nstatus: draft\n---\nbody\n")

	issues := runner.ValidateOne(path)
	require.True(t, issue.HasCode(issues, issue.CodeTagsNotList))
	res := fixer.Fix(path, Fixable(issues), false)
	require.True(t, res.Success)
	assert.Equal(t, []string{"converted tags from scalar to list"}, res.Fixes)
	assert.False(t, issue.HasCode(runner.ValidateOne(path), issue.CodeTagsNotList))
}

func TestFilenameTitleFallback(t *testing.T) {
	root, fixer, _ := setup(t)
	path := writeDoc(t, root, "notes/getting_started-guide.md", "No heading here.\n## Second level\n")
	res := fixer.Fix(path, []issue.Issue{{Code: issue.CodeMetadataMissing}}, true)
	assert.Contains(t, res.Fixes, "added title from filename: 'Getting Started Guide'")
}

func TestFilenameTitleConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("team_notes-%d.md", i)
			assert.Equal(t, fmt.Sprintf("Team Notes %d", i), FilenameTitle(name))
		}()
	}
	wg.Wait()
}

func TestBackupCollisionGetsSuffix(t *testing.T) {
	root, fixer, _ := setup(t)
	path := writeDoc(t, root, "notes/twice-fixed.md", "# Twice\n")

	first := fixer.Fix(path, []issue.Issue{{Code: issue.CodeMetadataMissing}}, false)
	require.True(t, first.Success)
	require.NoError(t, os.WriteFile(path, []byte("# Twice again\n"), 0o644))
	second := fixer.Fix(path, []issue.Issue{{Code: issue.CodeMetadataMissing}}, false)
	require.True(t, second.Success)

	assert.Equal(t, "twice-fixed_20250601_123045.md", filepath.Base(first.BackupPath))
	assert.Equal(t, "twice-fixed_20250601_123045_1.md", filepath.Base(second.BackupPath))
}

func TestBackupFailureLeavesDocument(t *testing.T) {
	root, fixer, _ := setup(t)
	blocker := writeDoc(t, root, "blocker", "x")
	fixer.opts.BackupDir = filepath.Join(blocker, "backups")
	original := "# Title\n"
	path := writeDoc(t, root, "notes/blocked-doc.md", original)

	res := fixer.Fix(path, []issue.Issue{{Code: issue.CodeMetadataMissing}}, false)
	assert.False(t, res.Success)
	var berr *BackupError
	require.True(t, errors.As(res.Err, &berr))
	assert.NotEmpty(t, res.Fixes, "partial fix list retained")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestFixMissingFile(t *testing.T) {
	root, fixer, _ := setup(t)
	res := fixer.Fix(filepath.Join(root, "nope.md"), []issue.Issue{{Code: issue.CodeMetadataMissing}}, true)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "file not found")
}

func TestTagsFromPath(t *testing.T) {
	root := filepath.Join("docs", "root")
	known := []string{"pricing", "policy", "policies", "support", "billing"}
	tests := []struct {
		rel  string
		want []string
	}{
		{"pricing/plans.md", []string{"pricing"}},
		{"Customer-Support/Billing-FAQ/q.md", []string{"support", "billing"}},
		{"policies/x.md", []string{"policies"}},
		{"misc/x.md", nil},
		{"x.md", nil},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got := TagsFromPath(filepath.Join(root, filepath.FromSlash(tt.rel)), root, known)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Nil(t, TagsFromPath(filepath.Join("elsewhere", "pricing", "x.md"), root, known))
}

func TestHeadingTitle(t *testing.T) {
	title, ok := HeadingTitle([]byte("intro\n\n# Use `docneat` **now**\n\n# Second\n"))
	require.True(t, ok)
	assert.Equal(t, "Use docneat now", title)

	_, ok = HeadingTitle([]byte("## only h2\n"))
	assert.False(t, ok)
}

func TestFixAllSkipsUnfixable(t *testing.T) {
	root, fixer, _ := setup(t)
	a := writeDoc(t, root, "notes/alpha-doc.md", "# A\n")
	b := writeDoc(t, root, "notes/beta-doc.md", "# B\n")
	results := map[string][]issue.Issue{
		b: {{Code: issue.CodeMetadataMissing}},
		a: {{Code: issue.CodeNameTooShort}},
	}
	out, err := fixer.FixAll(context.Background(), results, true)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b, out[0].Path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fixer.FixAll(ctx, results, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultString(t *testing.T) {
	r := Result{Path: "a.md", Preview: true, Fixes: []string{"added default tags"}}
	assert.Contains(t, r.String(), "[PREVIEW] a.md")
	assert.Contains(t, r.String(), "- added default tags")
}
