// Package issue defines the finding value shared by every validator and the
// conflict detector.
package issue

import (
	"fmt"
	"sort"
	"strings"
)

// Severity is a tagged severity value with an explicit strictness rank.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities from strictest (0) to most lenient.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// Label is the upper-case form used in reports.
func (s Severity) Label() string {
	return strings.ToUpper(string(s))
}

// Admits reports whether a minimum-severity filter of min lets s through.
// An info filter admits everything, an error filter only errors.
func Admits(min, s Severity) bool {
	return s.Rank() <= min.Rank()
}

// ParseSeverity accepts error, warning or info in any case.
func ParseSeverity(v string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(v))) {
	case SeverityError:
		return SeverityError, nil
	case SeverityWarning, "warn":
		return SeverityWarning, nil
	case SeverityInfo:
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("unknown severity %q (want error, warning or info)", v)
}

// Rule codes. The prefix names the producing subsystem.
const (
	CodeMetadataUnreadable = "YAML-000"
	CodeMetadataMissing    = "YAML-001"
	CodeFieldsMissing      = "YAML-002"
	CodeStatusInvalid      = "YAML-003"
	CodeTagsNotList        = "YAML-004"
	CodeMetadataMalformed  = "YAML-005"
	CodeTagsNonString      = "YAML-006"

	CodeNameNotFound  = "NAME-000"
	CodeNameUppercase = "NAME-001"
	CodeNameSpaces    = "NAME-002"
	CodeNameTooLong   = "NAME-003"
	CodeNameTooShort  = "NAME-004"
	CodeNameVersion   = "NAME-005"

	CodeMarkdownUnreadable = "MD-000"
	CodeHeadingSkip        = "MD-001"
	CodeCodeFence          = "MD-002"
	CodeLink               = "MD-003"
	CodeTrailingSpace      = "MD-004"
	CodeHorizontalRule     = "MD-005"

	CodeConflictStatus   = "CONFLICT-001"
	CodeConflictTags     = "CONFLICT-002"
	CodeConflictPricing  = "CONFLICT-003"
	CodeConflictCrossRef = "CONFLICT-004"
)

// Issue is a single finding about a document or a set of documents.
type Issue struct {
	Code       string   `json:"code"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	File       string   `json:"file,omitempty"`
	Line       int      `json:"line,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	// Fields lists missing metadata field names for YAML-002.
	Fields []string `json:"fields,omitempty"`
}

// Subsystem returns the rule-code prefix, e.g. "YAML" or "CONFLICT".
func (i Issue) Subsystem() string {
	if idx := strings.IndexByte(i.Code, '-'); idx > 0 {
		return i.Code[:idx]
	}
	return i.Code
}

func (i Issue) String() string {
	loc := i.File
	if i.Line > 0 {
		loc = fmt.Sprintf("%s:%d", i.File, i.Line)
	}
	return fmt.Sprintf("[%s] %s %s: %s", i.Severity.Label(), i.Code, loc, i.Message)
}

// Filter keeps the issues admitted by min.
func Filter(issues []Issue, min Severity) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, is := range issues {
		if Admits(min, is.Severity) {
			out = append(out, is)
		}
	}
	return out
}

// Count returns the number of errors and warnings in issues.
func Count(issues []Issue) (errors, warnings int) {
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}

// HasCode reports whether any issue carries code.
func HasCode(issues []Issue, code string) bool {
	for _, is := range issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

// Sort orders issues by file, line, then code.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.File != y.File {
			return x.File < y.File
		}
		if x.Line != y.Line {
			return x.Line < y.Line
		}
		return x.Code < y.Code
	})
}
