package validate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/frontmatter"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// MetadataValidator checks presence and shape of the metadata block.
type MetadataValidator struct {
	cfg   config.YAMLConfig
	delim string
	log   *logger.Logger
}

// NewMetadataValidator builds the validator from configuration.
func NewMetadataValidator(cfg config.YAMLConfig, delim string, log *logger.Logger) *MetadataValidator {
	if delim == "" {
		delim = frontmatter.DefaultDelimiter
	}
	return &MetadataValidator{cfg: cfg, delim: delim, log: log.With("metadata")}
}

func (v *MetadataValidator) Name() string  { return "metadata" }
func (v *MetadataValidator) Enabled() bool { return v.cfg.Enabled }

// Validate implements Validator.
func (v *MetadataValidator) Validate(path string) []issue.Issue {
	if !v.cfg.Enabled {
		v.log.Debug("metadata validation disabled", logger.String("file", path))
		return nil
	}
	content, bad := readDocument(path, issue.CodeMetadataUnreadable)
	if bad != nil {
		return []issue.Issue{*bad}
	}

	meta, _, err := frontmatter.Decode(content, v.delim)
	if errors.Is(err, frontmatter.ErrNoBlock) {
		return []issue.Issue{{
			Code:     issue.CodeMetadataMissing,
			Severity: issue.SeverityError,
			Message:  "metadata block is missing",
			File:     path,
			Line:     1,
			Suggestion: fmt.Sprintf("add a metadata block at the start of the file:\n%s\ntitle: Your Document Title\ntags: [tag1, tag2]\nstatus: draft\n%s",
				v.delim, v.delim),
		}}
	}
	if err != nil {
		line := 0
		var perr *frontmatter.ParseError
		if errors.As(err, &perr) {
			line = perr.Line
		}
		return []issue.Issue{{
			Code:       issue.CodeMetadataMalformed,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("malformed metadata block: %v", unwrapParse(err)),
			File:       path,
			Line:       line,
			Suggestion: "fix the YAML syntax of the metadata block",
		}}
	}

	var issues []issue.Issue
	if missing := v.missingFields(meta); len(missing) > 0 {
		list := strings.Join(missing, ", ")
		issues = append(issues, issue.Issue{
			Code:       issue.CodeFieldsMissing,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("missing required field(s): %s", list),
			File:       path,
			Suggestion: fmt.Sprintf("add the following field(s) to the metadata block: %s", list),
			Fields:     missing,
		})
	}
	if meta.Has("status") {
		issues = append(issues, v.checkStatus(path, meta)...)
	}
	if meta.Has("tags") {
		issues = append(issues, v.checkTags(path, meta)...)
	}
	return issues
}

func (v *MetadataValidator) missingFields(meta *frontmatter.Metadata) []string {
	var missing []string
	for _, f := range v.cfg.RequiredFields {
		if !meta.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (v *MetadataValidator) checkStatus(path string, meta *frontmatter.Metadata) []issue.Issue {
	allowed := strings.Join(v.cfg.AllowedStatuses, ", ")
	raw, _ := meta.Get("status")
	status, ok := raw.(string)
	if !ok {
		return []issue.Issue{{
			Code:       issue.CodeStatusInvalid,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("status must be a string, got %s", typeName(raw)),
			File:       path,
			Suggestion: fmt.Sprintf("change status to one of: %s", allowed),
		}}
	}
	if !slices.Contains(v.cfg.AllowedStatuses, status) {
		return []issue.Issue{{
			Code:       issue.CodeStatusInvalid,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("invalid status value: '%s'", status),
			File:       path,
			Suggestion: fmt.Sprintf("use one of the allowed values: %s", allowed),
		}}
	}
	return nil
}

func (v *MetadataValidator) checkTags(path string, meta *frontmatter.Metadata) []issue.Issue {
	raw, _ := meta.Get("tags")
	list, ok := raw.([]any)
	if !ok {
		return []issue.Issue{{
			Code:       issue.CodeTagsNotList,
			Severity:   issue.SeverityError,
			Message:    fmt.Sprintf("tags must be a list, got %s", typeName(raw)),
			File:       path,
			Suggestion: "change tags to a list, e.g. tags: [pricing, policy]",
		}}
	}
	for _, el := range list {
		if _, ok := el.(string); !ok {
			return []issue.Issue{{
				Code:       issue.CodeTagsNonString,
				Severity:   issue.SeverityWarning,
				Message:    "all tags should be strings",
				File:       path,
				Suggestion: "quote non-string tag values",
			}}
		}
	}
	return nil
}

func unwrapParse(err error) error {
	var perr *frontmatter.ParseError
	if errors.As(err, &perr) && perr.Err != nil {
		return perr.Err
	}
	return err
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
