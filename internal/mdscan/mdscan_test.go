package mdscan

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitClassifiesLines(t *testing.T) {
	content := "---\ntitle: x\n---\n# H\n```go\n[a](b.md)\n```\ntext\r\n"
	lines := Split([]byte(content), "---")
	require.Len(t, lines, 8)

	assert.True(t, lines[0].Metadata)
	assert.True(t, lines[2].Metadata)
	assert.False(t, lines[3].Metadata)
	assert.True(t, lines[4].Fence)
	assert.True(t, lines[5].InCode)
	assert.True(t, lines[6].Fence)
	assert.False(t, lines[7].Code())
	assert.Equal(t, "text", lines[7].Text)
	assert.Equal(t, 8, lines[7].Num)
}

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, Split(nil, "---"))
}

func TestLinksSkipCodeAndMetadata(t *testing.T) {
	content := "---\nsee: \"[m](meta.md)\"\n---\n[one](a.md) and [two](b.md#x)\n```\n[code](c.md)\n```\n"
	links := Links(Split([]byte(content), "---"))
	require.Len(t, links, 2)
	assert.Equal(t, Link{Text: "one", Target: "a.md", Line: 4}, links[0])
	assert.Equal(t, "b.md#x", links[1].Target)
}

func TestFenceLanguage(t *testing.T) {
	assert.Equal(t, "python", FenceLanguage("```python title=x"))
	assert.Equal(t, "", FenceLanguage("  ```  "))
}

func TestClassify(t *testing.T) {
	tests := map[string]TargetKind{
		"#section":             Anchor,
		"https://example.com":  Remote,
		"HTTP://EXAMPLE.COM":   Remote,
		"ftp://host/file":      Remote,
		"mailto:a@example.com": OtherScheme,
		"tel:+123":             OtherScheme,
		"docs/guide.md":        Relative,
		"../up.md#frag":        Relative,
	}
	for target, want := range tests {
		assert.Equal(t, want, Classify(target), target)
	}
}

func TestCleanTarget(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"guide.md", "guide.md", true},
		{"guide.md#part", "guide.md", true},
		{`guide.md "Guide title"`, "guide.md", true},
		{"<my guide.md>", "my guide.md", true},
		{"my%20guide.md", "my guide.md", true},
		{"?q=1", "", false},
	}
	for _, tt := range tests {
		got, ok := CleanTarget(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestResolve(t *testing.T) {
	p, ok := Resolve(filepath.Join("docs", "a", "x.md"), "../b/y.md#top")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("docs", "b", "y.md"), p)
}
