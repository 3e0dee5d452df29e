package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherReadsDocneatIgnore(t *testing.T) {
	t.Setenv("DOCNEAT_HOME", t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("# drafts\ndrafts/\n*.tmp.md\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))

	m, err := NewMatcher(root)
	require.NoError(t, err)

	assert.True(t, m.IsIgnoredDir(filepath.Join(root, "drafts")))
	assert.True(t, m.IsIgnored(filepath.Join(root, "notes", "scratch.tmp.md")))
	assert.True(t, m.IsIgnoredDir(filepath.Join(root, "build")))
	assert.False(t, m.IsIgnored(filepath.Join(root, "docs", "guide.md")))
}

func TestMatcherOutsideRoot(t *testing.T) {
	t.Setenv("DOCNEAT_HOME", t.TempDir())
	root := t.TempDir()
	m, err := NewMatcher(root)
	require.NoError(t, err)
	assert.False(t, m.IsIgnored(filepath.Join(t.TempDir(), "x.md")))
	assert.False(t, m.IsIgnored(root))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.md"}, splitPath("/a/./b//c.md"))
	assert.Empty(t, splitPath("."))
}

func TestMatcherReadsHomeIgnore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DOCNEAT_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte("archive/\n"), 0o644))
	root := t.TempDir()

	m, err := NewMatcher(root)
	require.NoError(t, err)
	assert.True(t, m.IsIgnoredDir(filepath.Join(root, "archive")))
	assert.False(t, m.IsIgnoredDir(filepath.Join(root, "guides")))
}
