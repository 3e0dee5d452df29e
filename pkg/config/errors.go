package config

import "fmt"

// Error reports an invalid setting. It is fatal at startup.
type Error struct {
	Key     string
	Message string
	Example string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("invalid configuration %q: %s", e.Key, e.Message)
	if e.Example != "" {
		msg += fmt.Sprintf(" (example: %s)", e.Example)
	}
	return msg
}

// examples gives a corrective snippet per key.
var examples = map[string]string{
	"processing.root":                            "processing.root: docs",
	"processing.include":                         "processing.include: [\"**/*.md\"]",
	"processing.cache_file":                      "processing.cache_file: _meta/.document-cache.json",
	"processing.backup_dir":                      "processing.backup_dir: _meta/.backups",
	"processing.concurrency":                     "processing.concurrency: 4",
	"processing.concurrency_percent":             "processing.concurrency_percent: 50",
	"metadata.delimiter":                         "metadata.delimiter: \"---\"",
	"validation.min_severity":                    "validation.min_severity: warning",
	"validation.fail_on":                         "validation.fail_on: error",
	"validation.yaml.required_fields":            "validation.yaml.required_fields: [title, tags, status]",
	"validation.yaml.allowed_statuses":           "validation.yaml.allowed_statuses: [draft, active, deprecated]",
	"validation.naming.min_length":               "validation.naming.min_length: 5",
	"validation.naming.max_length":               "validation.naming.max_length: 50",
	"validation.markdown.horizontal_rule_format": "validation.markdown.horizontal_rule_format: \"---\"",
	"validation.conflicts.deprecated_status":     "validation.conflicts.deprecated_status: deprecated",
	"fix.default_status":                         "fix.default_status: draft",
	"fix.default_tag":                            "fix.default_tag: general",
	"reporting.format":                           "reporting.format: console",
	"logging.level":                              "logging.level: info",
}

func newError(key, message string) *Error {
	return &Error{Key: key, Message: message, Example: examples[key]}
}
