// Package changes decides which documents need processing by comparing
// content fingerprints against the persistent cache.
package changes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fulmenhq/docneat/pkg/ignore"
)

// ScanError reports an unusable scan root.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// ErrNotDirectory is wrapped by ScanError when the root is a regular file.
var ErrNotDirectory = errors.New("not a directory")

// ScanOptions selects documents under a root.
type ScanOptions struct {
	Include []string
	Exclude []string
	// Ignore, when set, prunes files and directories matched by
	// .gitignore/.docneatignore.
	Ignore *ignore.Matcher
}

// Scan walks root and returns the sorted paths whose slash-relative form
// matches any include glob and no exclude glob.
func Scan(root string, opts ScanOptions) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: root, Err: ErrNotDirectory}
	}
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, &ScanError{Root: root, Err: fmt.Errorf("invalid glob %q", p)}
		}
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if opts.Ignore != nil && opts.Ignore.IsIgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if opts.Ignore != nil && opts.Ignore.IsIgnored(path) {
			return nil
		}
		if Selected(rel, opts.Include, opts.Exclude) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	sort.Strings(out)
	return out, nil
}

// Selected applies include/exclude globs to a slash-relative path.
// Exclusion wins.
func Selected(rel string, include, exclude []string) bool {
	if !matchAny(include, rel) {
		return false
	}
	return !matchAny(exclude, rel)
}

// Excluded reports whether rel matches an exclude glob. Directories are
// tested as-is, so "_meta/**" excludes "_meta" itself.
func Excluded(rel string, exclude []string) bool {
	return matchAny(exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
