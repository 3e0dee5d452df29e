package conflicts

import (
	"fmt"
	"path/filepath"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/internal/mdscan"
)

func (d *Detector) crossReferenceConflicts(docs []document) []issue.Issue {
	if d.cfg.DeprecatedStatus == "" {
		return nil
	}
	deprecated := map[string]bool{}
	for _, doc := range docs {
		if s, ok := doc.status(); ok && s == d.cfg.DeprecatedStatus {
			deprecated[doc.abs] = true
		}
	}
	if len(deprecated) == 0 {
		return nil
	}

	var issues []issue.Issue
	for _, doc := range docs {
		if deprecated[doc.abs] {
			continue
		}
		for _, link := range mdscan.Links(doc.lines) {
			if mdscan.Classify(link.Target) != mdscan.Relative {
				continue
			}
			target, ok := mdscan.Resolve(doc.abs, link.Target)
			if !ok || !deprecated[filepath.Clean(target)] {
				continue
			}
			issues = append(issues, issue.Issue{
				Code:       issue.CodeConflictCrossRef,
				Severity:   issue.SeverityWarning,
				Message:    fmt.Sprintf("link to deprecated document: '%s'", link.Target),
				File:       doc.path,
				Line:       link.Line,
				Suggestion: "update link to current documentation or remove if obsolete",
			})
		}
	}
	return issues
}
