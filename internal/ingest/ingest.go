// Package ingest turns HTML pages into markdown documents that pass
// validation: converted content under a generated metadata block and a
// slugged file name.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/fulmenhq/docneat/internal/validate"
	"github.com/fulmenhq/docneat/pkg/frontmatter"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// DefaultTags are applied when the caller supplies none.
var DefaultTags = []string{"web-content", "extracted"}

const (
	fallbackName = "document"
	maxSlugLen   = 50
	method       = "html_file"
)

// Options configures an Ingester.
type Options struct {
	Status    string
	Delimiter string
}

// Result describes an ingested page.
type Result struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Title  string `json:"title"`
}

type Ingester struct {
	conv *Converter
	opts Options
	log  *logger.Logger
	now  func() time.Time
}

func New(opts Options, log *logger.Logger) *Ingester {
	if opts.Status == "" {
		opts.Status = "draft"
	}
	if opts.Delimiter == "" {
		opts.Delimiter = frontmatter.DefaultDelimiter
	}
	return &Ingester{conv: NewConverter(), opts: opts, log: log.With("ingest"), now: time.Now}
}

// Ingest converts the HTML file src into outDir. Existing files are never
// overwritten; a numeric suffix is added instead.
func (in *Ingester) Ingest(src, outDir string, tags []string) (Result, error) {
	page, err := os.ReadFile(src) // #nosec G304 -- user-selected input file
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", src, err)
	}
	conv, err := in.conv.Convert(page)
	if err != nil {
		return Result{}, fmt.Errorf("convert %s: %w", src, err)
	}

	title := conv.Title
	if title == "" {
		base := filepath.Base(src)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if len(tags) == 0 {
		tags = DefaultTags
	}

	meta := frontmatter.NewMetadata()
	meta.Set("title", title)
	meta.Set("tags", tags)
	meta.Set("status", in.opts.Status)
	meta.Set("source", filepath.Base(src))
	meta.Set("extracted_date", in.now().Format("2006-01-02 15:04:05"))
	meta.Set("extraction_method", method)

	body := conv.Markdown
	if firstHeading(body) != title {
		body = "# " + title + "\n\n" + body
	}
	doc, err := frontmatter.Render(meta, []byte(body+"\n"), in.opts.Delimiter)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	path, err := writeNew(outDir, FileName(title), doc)
	if err != nil {
		return Result{}, err
	}
	in.log.Info("ingested document", logger.String("source", src), logger.String("path", path))
	return Result{Source: src, Path: path, Title: title}, nil
}

// FileName derives a lowercase hyphenated markdown file name from title.
func FileName(title string) string {
	s, err := slug.Normalize(title)
	if err != nil || s == "" {
		s = fallbackName
	}
	name := validate.Hyphenate(s)
	if len(name) > maxSlugLen {
		name = strings.TrimRight(name[:maxSlugLen], "-")
	}
	if name == "" {
		name = fallbackName
	}
	return name + ".md"
}

func writeNew(dir, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; n < 1000; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G304 -- generated name under the output dir
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if err := fill(path, f, data); err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}

// fill writes data into the freshly created file at path and closes it.
// On failure the partial file is removed so the name is free again.
func fill(path string, f io.WriteCloser, data []byte) error {
	_, err := f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
