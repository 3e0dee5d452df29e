package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/pkg/config"
)

func writeDoc(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func codes(issues []issue.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Code)
	}
	return out
}

func testConfig() *config.Config {
	return config.Default()
}
