package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
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

const page = `<!doctype html>
<html><head><title>Pricing Guide</title><style>body{}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<div class="sidebar">Links</div>
<p>Our <strong>plans</strong> are simple.</p>
<ul><li>Basic</li><li>Pro</li></ul>
<footer>Copyright</footer>
</body></html>`

func TestConvertStripsChrome(t *testing.T) {
	conv, err := NewConverter().Convert([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "Pricing Guide", conv.Title)
	assert.Contains(t, conv.Markdown, "Our **plans** are simple.")
	assert.Contains(t, conv.Markdown, "Basic")
	assert.NotContains(t, conv.Markdown, "Home")
	assert.NotContains(t, conv.Markdown, "Links")
	assert.NotContains(t, conv.Markdown, "Copyright")
}

func TestConvertPrefersMain(t *testing.T) {
	html := `<html><body><div>outside</div><main><h1>Inside</h1><p>kept</p></main></body></html>`
	conv, err := NewConverter().Convert([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Inside", conv.Title)
	assert.Contains(t, conv.Markdown, "kept")
	assert.NotContains(t, conv.Markdown, "outside")
}

func TestIngestWritesValidDocument(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.html")
	require.NoError(t, os.WriteFile(src, []byte(page), 0o644))
	out := filepath.Join(dir, "out")

	in := New(Options{}, logger.Nop())
	in.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	res, err := in.Ingest(src, out, nil)
	require.NoError(t, err)
	assert.Equal(t, "pricing-guide.md", filepath.Base(res.Path))

	meta, err := frontmatter.NewAccessor("").Parse(res.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "tags", "status", "source", "extracted_date", "extraction_method"}, meta.Keys())
	assert.Equal(t, DefaultTags, meta.Strings("tags"))
	status, _ := meta.String("status")
	assert.Equal(t, "draft", status)
	extracted, _ := meta.String("extracted_date")
	assert.Equal(t, "2025-01-02 03:04:05", extracted)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Pricing Guide\n")

	cfg := config.Default()
	runner := validate.NewRunner(cfg, out, logger.Nop())
	results, err := runner.Run(context.Background(), []string{res.Path})
	require.NoError(t, err)
	errs, _ := issue.Count(results[res.Path])
	assert.Zero(t, errs, results[res.Path])

	again, err := in.Ingest(src, out, []string{"pricing"})
	require.NoError(t, err)
	assert.Equal(t, "pricing-guide-2.md", filepath.Base(again.Path))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "document.md", FileName(""))
	long := FileName(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len(strings.TrimSuffix(long, ".md")), maxSlugLen)
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(long, ".md"), "-"))
}

type failingFile struct {
	f *os.File
}

func (w failingFile) Write(p []byte) (int, error) {
	n, _ := w.f.Write(p[:len(p)/2])
	return n, errors.New("disk full")
}

func (w failingFile) Close() error { return w.f.Close() }

func TestFillRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial-doc.md")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	require.NoError(t, err)

	err = fill(path, failingFile{f: f}, []byte("---\ntitle: Partial\n---\n"))
	require.ErrorContains(t, err, "disk full")
	assert.NoFileExists(t, path)

	name, err := writeNew(filepath.Dir(path), "partial-doc.md", []byte("ok\n"))
	require.NoError(t, err)
	assert.Equal(t, path, name)
}
