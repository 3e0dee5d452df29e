package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/issue"
)

const (
	ruleWidth        = 80
	conflictsPerKind = 10
)

type painter struct{ enabled bool }

func (p painter) paint(s string, attrs ...color.Attribute) string {
	if !p.enabled {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func (p painter) severity(s issue.Severity) string {
	label := "[" + s.Label() + "]"
	switch s {
	case issue.SeverityError:
		return p.paint(label, color.FgRed, color.Bold)
	case issue.SeverityWarning:
		return p.paint(label, color.FgYellow)
	default:
		return p.paint(label, color.FgCyan)
	}
}

// box frames lines, measuring display width so wide runes line up.
func box(lines []string) string {
	width := 0
	for _, l := range lines {
		width = max(width, runewidth.StringWidth(l))
	}
	border := strings.Repeat("─", width+2)
	var sb strings.Builder
	sb.WriteString("┌" + border + "┐\n")
	for _, l := range lines {
		fill := width - runewidth.StringWidth(l)
		sb.WriteString("│ " + l + strings.Repeat(" ", fill) + " │\n")
	}
	sb.WriteString("└" + border + "┘\n")
	return sb.String()
}

// displayPath shortens p relative to root when possible.
func displayPath(root, p string) string {
	if root == "" {
		return p
	}
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}

func consoleValidation(w io.Writer, rep *engine.Report, opts Options) error {
	p := painter{enabled: opts.Color}
	s := rep.Summary

	status := p.paint("PASSED", color.FgGreen, color.Bold)
	if rep.Failed() {
		status = p.paint("FAILED", color.FgRed, color.Bold)
	}

	var b strings.Builder
	b.WriteString(box([]string{
		"Document Validation Summary",
		fmt.Sprintf("Scanned:    %d", s.Scanned),
		fmt.Sprintf("Processed:  %d (new %d, modified %d, unchanged %d)",
			s.Processed, rep.Changes.New, rep.Changes.Modified, rep.Changes.Unchanged),
		fmt.Sprintf("Passed:     %d", s.Passed),
		fmt.Sprintf("Failed:     %d", s.Failed),
		fmt.Sprintf("Errors:     %d  Warnings: %d  Info: %d", s.Errors, s.Warnings, s.Info),
	}))

	if rules := rep.Rules(); len(rules) > 0 {
		b.WriteString("\nViolations by rule:\n")
		for _, r := range rules {
			fmt.Fprintf(&b, "  %-14s %d\n", r.Code, r.Count)
		}
	}

	for _, path := range rep.Paths() {
		issues := rep.Results[path]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", p.paint(displayPath(rep.Root, path), color.Bold))
		for _, is := range issues {
			loc := ""
			if is.Line > 0 {
				loc = fmt.Sprintf(":%d", is.Line)
			}
			fmt.Fprintf(&b, "  %s %s%s %s\n", p.severity(is.Severity), is.Code, loc, is.Message)
			if is.Suggestion != "" {
				fmt.Fprintf(&b, "      %s %s\n", p.paint("→", color.FgHiBlack), strings.ReplaceAll(is.Suggestion, "\n", "\n        "))
			}
		}
	}

	if len(rep.Renames) > 0 {
		b.WriteString("\nSuggested renames:\n")
		for _, path := range rep.RenamePaths() {
			fmt.Fprintf(&b, "  %s → %s\n", displayPath(rep.Root, path), displayPath(rep.Root, rep.Renames[path]))
		}
	}

	if rep.Conflicts != nil {
		b.WriteString("\n")
		if err := writeConflictBody(&b, ConflictSet{Report: rep.Conflicts, Documents: s.Scanned}, p, rep.Root); err != nil {
			return err
		}
	}
	if len(rep.Fixes) > 0 {
		b.WriteString("\n")
		writeFixBody(&b, FixSet{Results: rep.Fixes}, p)
	}

	fmt.Fprintf(&b, "\nResult: %s (fail-on %s)\n", status, rep.FailOn)
	_, err := io.WriteString(w, b.String())
	return err
}

func consoleConflicts(w io.Writer, set ConflictSet, opts Options) error {
	var b strings.Builder
	if err := writeConflictBody(&b, set, painter{enabled: opts.Color}, ""); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeConflictBody(b *strings.Builder, set ConflictSet, p painter, root string) error {
	line := strings.Repeat("=", ruleWidth)
	b.WriteString(line + "\n")
	b.WriteString("CONFLICT DETECTION REPORT\n")
	b.WriteString(line + "\n")
	fmt.Fprintf(b, "Documents analysed: %d\nTotal conflicts found: %d\n", set.Documents, set.Report.Total())

	for _, cat := range conflicts.Categories {
		issues := set.Report[cat]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s CONFLICTS (%d):\n", strings.ToUpper(strings.ReplaceAll(cat, "_", " ")), len(issues))
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for i, is := range issues {
			if i == conflictsPerKind {
				fmt.Fprintf(b, "... and %d more %s conflicts\n", len(issues)-conflictsPerKind, cat)
				break
			}
			name := filepath.Base(is.File)
			if root != "" {
				name = displayPath(root, is.File)
			}
			fmt.Fprintf(b, "%s [%s] %s\n  %s\n", p.severity(is.Severity), is.Code, name, is.Message)
			if is.Suggestion != "" {
				fmt.Fprintf(b, "  suggestion: %s\n", is.Suggestion)
			}
		}
	}
	b.WriteString(line + "\n")
	return nil
}

func consoleFixes(w io.Writer, set FixSet, opts Options) error {
	var b strings.Builder
	writeFixBody(&b, set, painter{enabled: opts.Color})
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFixBody(b *strings.Builder, set FixSet, p painter) {
	ok, failed := fixCounts(set.Results)
	mode := "apply"
	if set.Preview {
		mode = "preview"
	}
	fmt.Fprintf(b, "Auto-fix (%s): %d document(s), %s succeeded, %s failed\n",
		mode, len(set.Results),
		p.paint(fmt.Sprint(ok), color.FgGreen), p.paint(fmt.Sprint(failed), color.FgRed))
	for _, r := range set.Results {
		b.WriteString(r.String())
		b.WriteString("\n")
	}
}
