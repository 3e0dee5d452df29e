// Package fix repairs the safe subset of metadata issues: a missing block,
// missing required fields and scalar tags. Every applied fix is preceded by
// a byte-exact backup and leaves the document body untouched.
package fix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/frontmatter"
	"github.com/fulmenhq/docneat/pkg/logger"
)

var fixable = map[string]bool{
	issue.CodeMetadataMissing: true,
	issue.CodeFieldsMissing:   true,
	issue.CodeTagsNotList:     true,
}

// CanFix reports whether is belongs to an auto-fixable rule.
func CanFix(is issue.Issue) bool {
	return fixable[is.Code]
}

// Fixable keeps the auto-fixable issues.
func Fixable(issues []issue.Issue) []issue.Issue {
	var out []issue.Issue
	for _, is := range issues {
		if CanFix(is) {
			out = append(out, is)
		}
	}
	return out
}

// Options configures a Fixer.
type Options struct {
	RequiredFields []string
	DefaultStatus  string
	DefaultTag     string
	KnownTags      []string
	// Root bounds the directories considered when deriving tags.
	Root      string
	BackupDir string
	Delimiter string
}

// OptionsFromConfig resolves fixer options. A relative backup directory is
// taken relative to root.
func OptionsFromConfig(cfg *config.Config, root string) Options {
	backup := cfg.Processing.BackupDir
	if !filepath.IsAbs(backup) {
		backup = filepath.Join(root, backup)
	}
	return Options{
		RequiredFields: cfg.Validation.YAML.RequiredFields,
		DefaultStatus:  cfg.Fix.DefaultStatus,
		DefaultTag:     cfg.Fix.DefaultTag,
		KnownTags:      cfg.Fix.KnownTags,
		Root:           root,
		BackupDir:      backup,
		Delimiter:      cfg.Metadata.Delimiter,
	}
}

// Result describes what happened to one document.
type Result struct {
	Path       string   `json:"path"`
	Fixes      []string `json:"fixes"`
	Preview    bool     `json:"preview"`
	BackupPath string   `json:"backup_path,omitempty"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
	// Err is the infrastructure failure behind Errors, if any.
	Err error `json:"-"`
}

func (r Result) String() string {
	state := "SUCCESS"
	switch {
	case r.Preview:
		state = "PREVIEW"
	case !r.Success:
		state = "FAILED"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", state, r.Path)
	if len(r.Fixes) > 0 {
		fmt.Fprintf(&b, "\n  fixes (%d):", len(r.Fixes))
		for _, f := range r.Fixes {
			b.WriteString("\n    - " + f)
		}
	}
	if r.BackupPath != "" {
		b.WriteString("\n  backup: " + r.BackupPath)
	}
	for _, e := range r.Errors {
		b.WriteString("\n  error: " + e)
	}
	return b.String()
}

func (r *Result) fail(err error) Result {
	r.Success = false
	r.Err = err
	r.Errors = append(r.Errors, err.Error())
	return *r
}

// Fixer applies metadata fixes.
type Fixer struct {
	opts     Options
	accessor *frontmatter.Accessor
	log      *logger.Logger
	now      func() time.Time
}

func New(opts Options, log *logger.Logger) *Fixer {
	return &Fixer{
		opts:     opts,
		accessor: frontmatter.NewAccessor(opts.Delimiter),
		log:      log.With("fix"),
		now:      time.Now,
	}
}

// Fix synthesizes the fixes for issues. In preview mode nothing is written;
// otherwise the original is backed up and the metadata block rewritten.
func (f *Fixer) Fix(path string, issues []issue.Issue, preview bool) Result {
	res := Result{Path: path, Preview: preview, Success: true, Fixes: []string{}}

	content, err := os.ReadFile(path) // #nosec G304 -- document path supplied by the scanner
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res.fail(fmt.Errorf("file not found: %s", path))
		}
		return res.fail(fmt.Errorf("read %s: %w", path, err))
	}

	needsBlock := issue.HasCode(issues, issue.CodeMetadataMissing)
	var meta *frontmatter.Metadata
	var body []byte
	if needsBlock {
		meta = frontmatter.NewMetadata()
		body = content
		res.Fixes = append(res.Fixes, "added metadata block")
	} else {
		m, blk, err := frontmatter.Decode(content, f.opts.Delimiter)
		switch {
		case errors.Is(err, frontmatter.ErrNoBlock):
			meta = frontmatter.NewMetadata()
			body = content
			needsBlock = true
			res.Fixes = append(res.Fixes, "added metadata block")
		case err != nil:
			return res.fail(fmt.Errorf("parse metadata: %w", err))
		default:
			meta, body = m, blk.Body
		}
	}

	for _, field := range f.missingFields(issues, needsBlock) {
		if meta.Has(field) {
			continue
		}
		res.Fixes = append(res.Fixes, f.fillField(meta, field, path, body))
	}

	if issue.HasCode(issues, issue.CodeTagsNotList) {
		if msg, ok := f.convertTags(meta, path); ok {
			res.Fixes = append(res.Fixes, msg)
		}
	}

	if preview || len(res.Fixes) == 0 {
		return res
	}

	backup, err := f.backup(path)
	if err != nil {
		f.log.Error("backup failed, document left untouched", logger.String("path", path), logger.Err(err))
		return res.fail(err)
	}
	res.BackupPath = backup
	f.log.Info("created backup", logger.String("path", path), logger.String("backup", backup))

	if err := f.accessor.Write(path, meta, true); err != nil {
		f.log.Error("rewrite failed", logger.String("path", path), logger.Err(err))
		return res.fail(fmt.Errorf("write %s: %w", path, err))
	}
	f.log.Info("applied fixes", logger.String("path", path), logger.Int("fixes", len(res.Fixes)))
	return res
}

// missingFields lists the fields to synthesize: every required field when
// the block is new, otherwise the Fields of YAML-002 issues. Required
// fields come first in configured order.
func (f *Fixer) missingFields(issues []issue.Issue, newBlock bool) []string {
	if newBlock {
		return append([]string(nil), f.opts.RequiredFields...)
	}
	wanted := map[string]bool{}
	for _, is := range issues {
		if is.Code != issue.CodeFieldsMissing {
			continue
		}
		for _, name := range is.Fields {
			wanted[name] = true
		}
	}
	var out []string
	for _, name := range f.opts.RequiredFields {
		if wanted[name] {
			out = append(out, name)
			delete(wanted, name)
		}
	}
	extra := make([]string, 0, len(wanted))
	for name := range wanted {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func (f *Fixer) fillField(meta *frontmatter.Metadata, field, path string, body []byte) string {
	switch field {
	case "title":
		if title, ok := HeadingTitle(body); ok {
			meta.Set("title", title)
			return fmt.Sprintf("added title from heading: '%s'", title)
		}
		title := FilenameTitle(path)
		meta.Set("title", title)
		return fmt.Sprintf("added title from filename: '%s'", title)
	case "tags":
		return f.fillTags(meta, path)
	case "status":
		meta.Set("status", f.opts.DefaultStatus)
		return fmt.Sprintf("added default status: %s", f.opts.DefaultStatus)
	default:
		meta.Set(field, "")
		return fmt.Sprintf("added empty field: %s", field)
	}
}

func (f *Fixer) fillTags(meta *frontmatter.Metadata, path string) string {
	if tags := TagsFromPath(path, f.opts.Root, f.opts.KnownTags); len(tags) > 0 {
		meta.Set("tags", tags)
		return fmt.Sprintf("added tags from path: %s", strings.Join(tags, ", "))
	}
	meta.Set("tags", []string{f.opts.DefaultTag})
	return "added default tags"
}

// convertTags turns a scalar tags value into a one-element list. A null
// value is treated as missing.
func (f *Fixer) convertTags(meta *frontmatter.Metadata, path string) (string, bool) {
	raw, ok := meta.Get("tags")
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case nil:
		return f.fillTags(meta, path), true
	case []any, []string:
		return "", false
	case map[string]any:
		f.log.Warn("tags is a mapping, not converting", logger.String("path", path))
		return "", false
	default:
		meta.Set("tags", []string{fmt.Sprint(v)})
		return "converted tags from scalar to list", true
	}
}

// TagsFromPath matches directory names between root and path against
// known tags by case-insensitive substring.
func TagsFromPath(path, root string, known []string) []string {
	dir := filepath.Dir(path)
	if root != "" {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
		dir = rel
	}
	var tags []string
	seen := map[string]bool{}
	for _, seg := range strings.Split(filepath.ToSlash(dir), "/") {
		if seg == "" || seg == "." {
			continue
		}
		lower := strings.ToLower(seg)
		for _, tag := range known {
			if tag != "" && !seen[tag] && strings.Contains(lower, strings.ToLower(tag)) {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// FixAll fixes every document with fixable issues, sequentially and in path
// order. Cancellation stops before the next document.
func (f *Fixer) FixAll(ctx context.Context, results map[string][]issue.Issue, preview bool) ([]Result, error) {
	paths := make([]string, 0, len(results))
	for p, issues := range results {
		if len(Fixable(issues)) > 0 {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	out := make([]Result, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		f.log.Debug("fixing document", logger.String("path", p))
		out = append(out, f.Fix(p, Fixable(results[p]), preview))
	}
	return out, nil
}
