package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/internal/mdscan"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/logger"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)`)
	rulePattern    = regexp.MustCompile(`^(\*\*\*+|---+|___+)\s*$`)
)

// MarkdownValidator runs line-level syntax checks.
type MarkdownValidator struct {
	cfg   config.MarkdownConfig
	delim string
	log   *logger.Logger
}

// NewMarkdownValidator builds the validator from configuration.
func NewMarkdownValidator(cfg config.MarkdownConfig, delim string, log *logger.Logger) *MarkdownValidator {
	return &MarkdownValidator{cfg: cfg, delim: delim, log: log.With("markdown")}
}

func (v *MarkdownValidator) Name() string  { return "markdown" }
func (v *MarkdownValidator) Enabled() bool { return v.cfg.Enabled }

// Validate implements Validator.
func (v *MarkdownValidator) Validate(path string) []issue.Issue {
	if !v.cfg.Enabled {
		return nil
	}
	content, bad := readDocument(path, issue.CodeMarkdownUnreadable)
	if bad != nil {
		return []issue.Issue{*bad}
	}
	lines := mdscan.Split(content, v.delim)

	var issues []issue.Issue
	if v.cfg.EnforceHeadingHierarchy {
		issues = append(issues, v.checkHeadings(path, lines)...)
	}
	if v.cfg.RequireLanguageInCodeBlocks {
		issues = append(issues, v.checkFences(path, lines)...)
	}
	issues = append(issues, v.checkLinks(path, lines)...)
	if v.cfg.CheckTrailingWhitespace {
		issues = append(issues, v.checkTrailingWhitespace(path, lines)...)
	}
	if v.cfg.HorizontalRuleFormat != "" {
		issues = append(issues, v.checkRules(path, lines)...)
	}
	return issues
}

func (v *MarkdownValidator) checkHeadings(path string, lines []mdscan.Line) []issue.Issue {
	var issues []issue.Issue
	last := 0
	for _, ln := range lines {
		if ln.Metadata || ln.Code() {
			continue
		}
		m := headingPattern.FindStringSubmatch(ln.Text)
		if m == nil {
			continue
		}
		level := len(m[1])
		if last > 0 && level > last+1 {
			issues = append(issues, issue.Issue{
				Code:       issue.CodeHeadingSkip,
				Severity:   issue.SeverityWarning,
				Message:    fmt.Sprintf("heading hierarchy skips level (H%d -> H%d): '%s'", last, level, strings.TrimSpace(m[2])),
				File:       path,
				Line:       ln.Num,
				Suggestion: fmt.Sprintf("insert an H%d heading before this H%d heading", last+1, level),
			})
		}
		last = level
	}
	return issues
}

func (v *MarkdownValidator) checkFences(path string, lines []mdscan.Line) []issue.Issue {
	var issues []issue.Issue
	open := 0
	for _, ln := range lines {
		if !ln.Fence {
			continue
		}
		if open == 0 {
			open = ln.Num
			if mdscan.FenceLanguage(ln.Text) == "" {
				issues = append(issues, issue.Issue{
					Code:       issue.CodeCodeFence,
					Severity:   issue.SeverityWarning,
					Message:    "code block missing language specification",
					File:       path,
					Line:       ln.Num,
					Suggestion: "add a language after the opening fence, e.g. ```bash",
				})
			}
			continue
		}
		open = 0
	}
	if open > 0 {
		issues = append(issues, issue.Issue{
			Code:       issue.CodeCodeFence,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("unclosed code block starting at line %d", open),
			File:       path,
			Line:       open,
			Suggestion: "add a closing ``` to end the code block",
		})
	}
	return issues
}

func (v *MarkdownValidator) checkLinks(path string, lines []mdscan.Line) []issue.Issue {
	var issues []issue.Issue
	for _, link := range mdscan.Links(lines) {
		switch mdscan.Classify(link.Target) {
		case mdscan.Anchor, mdscan.OtherScheme:
			continue
		case mdscan.Remote:
			if v.cfg.RelativeLinksOnly {
				issues = append(issues, issue.Issue{
					Code:       issue.CodeLink,
					Severity:   issue.SeverityInfo,
					Message:    fmt.Sprintf("absolute URL in internal document: %s", link.Target),
					File:       path,
					Line:       link.Line,
					Suggestion: "use a relative path for internal documentation links",
				})
			}
			continue
		}

		target, ok := mdscan.Resolve(path, link.Target)
		if !ok {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				v.log.Debug("link target stat failed", logger.String("target", target), logger.Err(err))
			}
			clean, _ := mdscan.CleanTarget(link.Target)
			issues = append(issues, issue.Issue{
				Code:       issue.CodeLink,
				Severity:   issue.SeverityError,
				Message:    fmt.Sprintf("broken link: target not found '%s'", link.Target),
				File:       path,
				Line:       link.Line,
				Suggestion: fmt.Sprintf("check that '%s' exists or fix the link path", clean),
			})
		}
	}
	return issues
}

func (v *MarkdownValidator) checkTrailingWhitespace(path string, lines []mdscan.Line) []issue.Issue {
	var issues []issue.Issue
	for _, ln := range lines {
		if ln.Metadata {
			continue
		}
		if ln.Text != strings.TrimRight(ln.Text, " \t") {
			issues = append(issues, issue.Issue{
				Code:       issue.CodeTrailingSpace,
				Severity:   issue.SeverityInfo,
				Message:    "line has trailing whitespace",
				File:       path,
				Line:       ln.Num,
				Suggestion: "remove trailing whitespace",
			})
		}
	}
	return issues
}

func (v *MarkdownValidator) checkRules(path string, lines []mdscan.Line) []issue.Issue {
	var issues []issue.Issue
	want := v.cfg.HorizontalRuleFormat
	for _, ln := range lines {
		if ln.Metadata || ln.Code() {
			continue
		}
		m := rulePattern.FindStringSubmatch(strings.TrimSpace(ln.Text))
		if m == nil || strings.HasPrefix(m[1], want) {
			continue
		}
		issues = append(issues, issue.Issue{
			Code:       issue.CodeHorizontalRule,
			Severity:   issue.SeverityInfo,
			Message:    fmt.Sprintf("horizontal rule '%s' does not match configured format '%s'", m[1], want),
			File:       path,
			Line:       ln.Num,
			Suggestion: fmt.Sprintf("use '%s' for consistency", want),
		})
	}
	return issues
}
