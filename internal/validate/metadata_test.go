package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/pkg/logger"
)

func newMetadata() *MetadataValidator {
	return NewMetadataValidator(testConfig().Validation.YAML, "---", logger.Nop())
}

func TestMetadataMissingBlock(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "doc.md", "# My Title\n\ncontent")
	v := newMetadata()

	first := v.Validate(path)
	require.Len(t, first, 1)
	assert.Equal(t, issue.CodeMetadataMissing, first[0].Code)
	assert.Equal(t, issue.SeverityError, first[0].Severity)
	assert.Equal(t, 1, first[0].Line)

	assert.Equal(t, first, v.Validate(path), "validation must be idempotent")
}

func TestMetadataValidDocument(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "doc.md", "---\ntitle: Guide\ntags: [support, billing]\nstatus: active\n---\nbody\n")
	assert.Empty(t, newMetadata().Validate(path))
}

func TestMetadataFindings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"missing fields listed once", "---\ntitle: x\n---\n", []string{issue.CodeFieldsMissing}},
		{"malformed", "---\ntitle: [oops\n---\n", []string{issue.CodeMetadataMalformed}},
		{"not a mapping", "---\n- a\n---\n", []string{issue.CodeMetadataMalformed}},
		{"status case sensitive", "---\ntitle: x\ntags: [a]\nstatus: Draft\n---\n", []string{issue.CodeStatusInvalid}},
		{"status not string", "---\ntitle: x\ntags: [a]\nstatus: 3\n---\n", []string{issue.CodeStatusInvalid}},
		{"scalar tags", "---\ntitle: x\ntags: pricing\nstatus: draft\n---\n", []string{issue.CodeTagsNotList}},
		{"non-string tag", "---\ntitle: x\ntags: [a, 2]\nstatus: draft\n---\n", []string{issue.CodeTagsNonString}},
		{"format tag is not a block", "---yaml\ntitle: x\n---\n", []string{issue.CodeMetadataMissing}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, t.TempDir(), "doc.md", tt.content)
			assert.Equal(t, tt.want, codes(newMetadata().Validate(path)))
		})
	}
}

func TestMetadataMissingFieldsStructured(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "doc.md", "---\nowner: ops\n---\n")
	issues := newMetadata().Validate(path)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{"title", "tags", "status"}, issues[0].Fields)
	assert.Contains(t, issues[0].Message, "title, tags, status")
}

func TestMetadataFileNotFound(t *testing.T) {
	issues := newMetadata().Validate(t.TempDir() + "/missing.md")
	require.Len(t, issues, 1)
	assert.Equal(t, issue.CodeMetadataUnreadable, issues[0].Code)
	assert.Contains(t, issues[0].Message, "file not found")
}

func TestMetadataDisabled(t *testing.T) {
	cfg := testConfig().Validation.YAML
	cfg.Enabled = false
	v := NewMetadataValidator(cfg, "---", logger.Nop())
	path := writeDoc(t, t.TempDir(), "doc.md", "no block")
	assert.Empty(t, v.Validate(path))
	assert.False(t, v.Enabled())
}

func TestMetadataCustomDelimiter(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "doc.md", "+++\ntitle: x\ntags: [a]\nstatus: draft\n+++\nbody")
	v := NewMetadataValidator(testConfig().Validation.YAML, "+++", logger.Nop())
	assert.Empty(t, v.Validate(path))
}
