package conflicts

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/fulmenhq/docneat/internal/issue"
)

func (d *Detector) statusConflicts(docs []document) []issue.Issue {
	usage := map[string][]string{}
	for _, doc := range docs {
		if s, ok := doc.status(); ok {
			usage[s] = append(usage[s], doc.path)
		}
	}

	byLower := map[string][]string{}
	for value := range usage {
		lower := strings.ToLower(value)
		byLower[lower] = append(byLower[lower], value)
	}
	lowers := sortedKeys(byLower)

	var issues []issue.Issue
	for _, lower := range lowers {
		variants := byLower[lower]
		if len(variants) < 2 {
			continue
		}
		sort.Strings(variants)
		issues = append(issues, issue.Issue{
			Code:       issue.CodeConflictStatus,
			Severity:   issue.SeverityWarning,
			Message:    fmt.Sprintf("status value has case variations: %s", strings.Join(variants, ", ")),
			File:       usage[variants[0]][0],
			Suggestion: fmt.Sprintf("standardize to lowercase: '%s'", lower),
		})
	}

	for _, value := range sortedKeys(usage) {
		if slices.Contains(d.allowed, value) {
			continue
		}
		issues = append(issues, issue.Issue{
			Code:       issue.CodeConflictStatus,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("non-standard status value: '%s' used in %d document(s)", value, len(usage[value])),
			File:       usage[value][0],
			Suggestion: fmt.Sprintf("use one of: %s", strings.Join(d.allowed, ", ")),
		})
	}
	return issues
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
