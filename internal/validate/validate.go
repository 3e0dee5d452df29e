// Package validate holds the per-document rule validators: metadata block,
// file naming and markdown syntax. Validators are fail-soft: I/O problems
// become a single sentinel issue, never a returned error.
package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/fulmenhq/docneat/internal/issue"
)

// Validator checks a single document.
type Validator interface {
	// Name identifies the validator in logs and reports.
	Name() string
	// Enabled reports whether configuration switched the validator on.
	Enabled() bool
	// Validate returns the issues found in the document at path.
	Validate(path string) []issue.Issue
}

// readDocument loads path. On failure it returns the sentinel issue for code.
func readDocument(path, code string) ([]byte, *issue.Issue) {
	content, err := os.ReadFile(path) // #nosec G304 -- document path supplied by the scanner
	if err == nil {
		return content, nil
	}
	is := issue.Issue{Code: code, Severity: issue.SeverityError, File: path}
	if errors.Is(err, fs.ErrNotExist) {
		is.Message = fmt.Sprintf("file not found: %s", path)
	} else {
		is.Message = fmt.Sprintf("error reading file: %v", err)
	}
	return nil, &is
}

// WorkerCount resolves a worker count from an explicit concurrency or a
// percentage of available CPU cores (50 when unset).
func WorkerCount(concurrency, percent int) int {
	if concurrency > 0 {
		return concurrency
	}
	if percent <= 0 {
		percent = 50
	}
	n := (runtime.NumCPU() * percent) / 100
	if n < 1 {
		n = 1
	}
	return n
}
