package conflicts

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/docneat/internal/issue"
)

func (d *Detector) tagConflicts(docs []document) []issue.Issue {
	usage := map[string][]string{}
	for _, doc := range docs {
		for _, tag := range doc.meta.Strings("tags") {
			lower := strings.ToLower(tag)
			usage[lower] = append(usage[lower], doc.path)
		}
	}

	synonyms := make(map[string]string, len(d.cfg.TagSynonyms))
	for k, v := range d.cfg.TagSynonyms {
		synonyms[strings.ToLower(k)] = v
	}

	var issues []issue.Issue
	for _, tag := range sortedKeys(usage) {
		canonical, ok := synonyms[tag]
		if !ok || strings.EqualFold(canonical, tag) {
			continue
		}
		if _, used := usage[strings.ToLower(canonical)]; !used {
			continue
		}
		issues = append(issues, issue.Issue{
			Code:       issue.CodeConflictTags,
			Severity:   issue.SeverityWarning,
			Message:    fmt.Sprintf("tag synonym conflict: '%s' and '%s' both used", tag, canonical),
			File:       usage[tag][0],
			Suggestion: fmt.Sprintf("standardize to canonical form: '%s'", canonical),
		})
	}
	return issues
}
