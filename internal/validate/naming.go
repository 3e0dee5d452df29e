package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/logger"
)

var (
	versionMarker  = regexp.MustCompile(`(?i)[-_\s](v|ver|version)\d+(\.\d+)*($|[-_\s])`)
	camelBoundary  = regexp.MustCompile(`([a-z])([A-Z])`)
	repeatedHyphen = regexp.MustCompile(`-+`)
)

// NamingValidator enforces lowercase-with-hyphens file and directory names.
type NamingValidator struct {
	cfg  config.NamingConfig
	root string
	log  *logger.Logger
}

// NewNamingValidator builds the validator. When root is set and directory
// checks are enabled, every directory between root and the file is checked.
func NewNamingValidator(cfg config.NamingConfig, root string, log *logger.Logger) *NamingValidator {
	return &NamingValidator{cfg: cfg, root: root, log: log.With("naming")}
}

func (v *NamingValidator) Name() string  { return "naming" }
func (v *NamingValidator) Enabled() bool { return v.cfg.Enabled }

// Validate implements Validator.
func (v *NamingValidator) Validate(path string) []issue.Issue {
	if !v.cfg.Enabled {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return []issue.Issue{{
			Code:     issue.CodeNameNotFound,
			Severity: issue.SeverityError,
			Message:  fmt.Sprintf("file not found: %s", path),
			File:     path,
		}}
	}

	issues := v.checkFile(path)
	if v.root != "" && v.cfg.CheckDirectories {
		issues = append(issues, v.checkDirectories(path)...)
	}
	return issues
}

func (v *NamingValidator) checkFile(path string) []issue.Issue {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	if slices.Contains(v.cfg.AllowUppercaseFiles, name) {
		v.log.Debug("naming exemption", logger.String("file", name))
		return nil
	}

	var issues []issue.Issue
	suggestion := fmt.Sprintf("rename to: '%s'", SuggestName(name))

	if stem != strings.ToLower(stem) {
		issues = append(issues, issue.Issue{
			Code:       issue.CodeNameUppercase,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("file name must be lowercase-with-hyphens: '%s'", name),
			File:       path,
			Suggestion: suggestion,
		})
	}

	if !slices.Contains(v.cfg.AllowSpacesExtensions, strings.ToLower(ext)) && strings.Contains(name, " ") {
		issues = append(issues, issue.Issue{
			Code:       issue.CodeNameSpaces,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("file name contains spaces: '%s'", name),
			File:       path,
			Suggestion: suggestion,
		})
	}

	n := utf8.RuneCountInString(stem)
	if v.cfg.MaxLength > 0 && n > v.cfg.MaxLength {
		issues = append(issues, issue.Issue{
			Code:       issue.CodeNameTooLong,
			Severity:   issue.SeverityWarning,
			Message:    fmt.Sprintf("file name exceeds maximum length (%d > %d): '%s'", n, v.cfg.MaxLength, name),
			File:       path,
			Suggestion: fmt.Sprintf("shorten the file name to at most %d characters", v.cfg.MaxLength),
		})
	}
	if n < v.cfg.MinLength {
		issues = append(issues, issue.Issue{
			Code:       issue.CodeNameTooShort,
			Severity:   issue.SeverityWarning,
			Message:    fmt.Sprintf("file name too short (%d < %d): '%s'", n, v.cfg.MinLength, name),
			File:       path,
			Suggestion: fmt.Sprintf("use a more descriptive name (at least %d characters)", v.cfg.MinLength),
		})
	}

	if v.cfg.NoVersionNumbers && versionMarker.MatchString(stem) {
		issues = append(issues, issue.Issue{
			Code:       issue.CodeNameVersion,
			Severity:   issue.SeverityWarning,
			Message:    fmt.Sprintf("file name contains a version number: '%s'", name),
			File:       path,
			Suggestion: "record the version in the metadata block instead of the file name",
		})
	}
	return issues
}

func (v *NamingValidator) checkDirectories(path string) []issue.Issue {
	rel, err := filepath.Rel(v.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		v.log.Warn("file is outside the naming root", logger.String("file", path), logger.String("root", v.root))
		return nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	var issues []issue.Issue
	for _, dir := range parts[:len(parts)-1] {
		if dir == "." || dir == "" {
			continue
		}
		if dir != strings.ToLower(dir) {
			issues = append(issues, issue.Issue{
				Code:       issue.CodeNameUppercase,
				Severity:   issue.SeverityError,
				Message:    fmt.Sprintf("directory name must be lowercase: '%s'", dir),
				File:       path,
				Suggestion: fmt.Sprintf("rename directory '%s' to '%s'", dir, strings.ToLower(dir)),
			})
		}
		if strings.Contains(dir, " ") {
			issues = append(issues, issue.Issue{
				Code:       issue.CodeNameSpaces,
				Severity:   issue.SeverityError,
				Message:    fmt.Sprintf("directory name contains spaces: '%s'", dir),
				File:       path,
				Suggestion: fmt.Sprintf("rename directory '%s' to '%s'", dir, strings.ReplaceAll(dir, " ", "-")),
			})
		}
	}
	return issues
}

// SuggestName converts a file name to lowercase-with-hyphens, keeping the
// extension. Version markers are kept.
func SuggestName(name string) string {
	ext := filepath.Ext(name)
	return Hyphenate(strings.TrimSuffix(name, ext)) + ext
}

// Hyphenate normalizes separators to hyphens, splits camelCase, lowercases
// and collapses repeated hyphens.
func Hyphenate(s string) string {
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	s = camelBoundary.ReplaceAllString(s, "$1-$2")
	s = strings.ToLower(s)
	s = repeatedHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// RenameSuggestions returns the proposed new name for each path whose file
// name breaks the convention.
func (v *NamingValidator) RenameSuggestions(paths []string) map[string]string {
	out := make(map[string]string)
	for _, p := range paths {
		for _, is := range v.checkFile(p) {
			if is.Code == issue.CodeNameUppercase || is.Code == issue.CodeNameSpaces {
				out[p] = filepath.Join(filepath.Dir(p), SuggestName(filepath.Base(p)))
				break
			}
		}
	}
	return out
}
