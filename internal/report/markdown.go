package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aymerick/raymond"

	"github.com/fulmenhq/docneat/internal/assets"
	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/issue"
)

const (
	validationTemplate = "reports/validation.md.hbs"
	conflictsTemplate  = "reports/conflicts.md.hbs"
	fixesTemplate      = "reports/fixes.md.hbs"
)

var (
	templatesMu sync.Mutex
	templates   = map[string]*raymond.Template{}
)

func template(name string) (*raymond.Template, error) {
	templatesMu.Lock()
	defer templatesMu.Unlock()
	if tpl, ok := templates[name]; ok {
		return tpl, nil
	}
	src, err := assets.GetTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", name, err)
	}
	tpl, err := raymond.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	templates[name] = tpl
	return tpl, nil
}

func render(w io.Writer, name string, ctx map[string]any) error {
	tpl, err := template(name)
	if err != nil {
		return err
	}
	out, err := tpl.Exec(ctx)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func issueContext(is issue.Issue, root string) map[string]any {
	return map[string]any{
		"severity":   is.Severity.Label(),
		"code":       is.Code,
		"file":       displayPath(root, is.File),
		"line":       is.Line,
		"message":    is.Message,
		"suggestion": strings.ReplaceAll(is.Suggestion, "\n", " "),
	}
}

func markdownValidation(w io.Writer, rep *engine.Report, opts Options) error {
	rules := make([]map[string]any, 0)
	for _, r := range rep.Rules() {
		rules = append(rules, map[string]any{"code": r.Code, "count": r.Count})
	}
	docs := make([]map[string]any, 0)
	for _, p := range rep.Paths() {
		issues := rep.Results[p]
		if len(issues) == 0 {
			continue
		}
		items := make([]map[string]any, 0, len(issues))
		for _, is := range issues {
			items = append(items, issueContext(is, rep.Root))
		}
		docs = append(docs, map[string]any{"path": displayPath(rep.Root, p), "issues": items})
	}
	renames := make([]map[string]any, 0, len(rep.Renames))
	for _, p := range rep.RenamePaths() {
		renames = append(renames, map[string]any{"from": displayPath(rep.Root, p), "to": displayPath(rep.Root, rep.Renames[p])})
	}
	s := rep.Summary
	ctx := map[string]any{
		"run_id":    rep.RunID,
		"generated": opts.now().UTC().Format(time.RFC3339),
		"root":      rep.Root,
		"summary": map[string]any{
			"scanned":   s.Scanned,
			"processed": s.Processed,
			"passed":    s.Passed,
			"failed":    s.Failed,
			"errors":    s.Errors,
			"warnings":  s.Warnings,
			"info":      s.Info,
		},
		"rules":     rules,
		"documents": docs,
		"renames":   renames,
	}
	if err := render(w, validationTemplate, ctx); err != nil {
		return err
	}
	if rep.Conflicts != nil {
		if err := markdownConflicts(w, ConflictSet{Report: rep.Conflicts, Documents: s.Scanned}, opts); err != nil {
			return err
		}
	}
	if len(rep.Fixes) > 0 {
		return markdownFixes(w, FixSet{Results: rep.Fixes})
	}
	return nil
}

func markdownConflicts(w io.Writer, set ConflictSet, opts Options) error {
	cats := make([]map[string]any, 0, len(conflicts.Categories))
	for _, cat := range conflicts.Categories {
		issues, ok := set.Report[cat]
		if !ok {
			continue
		}
		items := make([]map[string]any, 0, len(issues))
		for _, is := range issues {
			items = append(items, issueContext(is, ""))
		}
		cats = append(cats, map[string]any{
			"title":  strings.ReplaceAll(cat, "_", " "),
			"count":  len(issues),
			"issues": items,
		})
	}
	return render(w, conflictsTemplate, map[string]any{
		"generated":  opts.now().UTC().Format(time.RFC3339),
		"documents":  set.Documents,
		"total":      set.Report.Total(),
		"categories": cats,
	})
}

func markdownFixes(w io.Writer, set FixSet) error {
	ok, failed := fixCounts(set.Results)
	mode := "apply"
	if set.Preview {
		mode = "preview"
	}
	results := make([]map[string]any, 0, len(set.Results))
	for _, r := range set.Results {
		results = append(results, map[string]any{
			"path":   r.Path,
			"fixes":  r.Fixes,
			"backup": r.BackupPath,
			"errors": r.Errors,
		})
	}
	return render(w, fixesTemplate, map[string]any{
		"mode":      mode,
		"total":     len(set.Results),
		"succeeded": ok,
		"failed":    failed,
		"results":   results,
	})
}
