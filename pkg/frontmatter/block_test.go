package frontmatter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ok      bool
		raw     string
		body    string
		endLine int
	}{
		{"basic", "---\ntitle: A\n---\n# Body\n", true, "title: A\n", "# Body\n", 3},
		{"empty block", "---\n---\nbody", true, "", "body", 2},
		{"closing at eof", "---\ntitle: A\n---", true, "title: A\n", "", 3},
		{"crlf delimiters", "---\r\ntitle: A\r\n---\r\nbody\r\n", true, "title: A\r\n", "body\r\n", 3},
		{"trailing spaces on delimiter", "---  \nk: v\n--- \nbody", true, "k: v\n", "body", 3},
		{"no block", "# Title\n\ntext", false, "", "# Title\n\ntext", 0},
		{"leading blank line", "\n---\nk: v\n---\n", false, "", "\n---\nk: v\n---\n", 0},
		{"format tag", "---yaml\nk: v\n---\n", false, "", "---yaml\nk: v\n---\n", 0},
		{"unclosed", "---\nk: v\nbody\n", false, "", "---\nk: v\nbody\n", 0},
		{"single line", "---", false, "", "---", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blk, ok := Split([]byte(tt.content), "---")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.raw, string(blk.Raw))
			assert.Equal(t, tt.body, string(blk.Body))
			assert.Equal(t, tt.endLine, blk.EndLine)
		})
	}
}

func TestDecode(t *testing.T) {
	meta, _, err := Decode([]byte("---\ntitle: Hello\ntags: [a, b]\nstatus: draft\n---\nbody"), "---")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "tags", "status"}, meta.Keys())
	title, ok := meta.String("title")
	assert.True(t, ok)
	assert.Equal(t, "Hello", title)
	assert.Equal(t, []string{"a", "b"}, meta.Strings("tags"))

	_, _, err = Decode([]byte("# nothing"), "---")
	assert.True(t, errors.Is(err, ErrNoBlock))

	_, _, err = Decode([]byte("---\ntitle: [unclosed\n---\n"), "---")
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))

	_, _, err = Decode([]byte("---\n- a\n- b\n---\n"), "---")
	assert.True(t, errors.As(err, &perr), "a sequence is not metadata")

	meta, _, err = Decode([]byte("---\n\n---\nbody"), "---")
	require.NoError(t, err)
	assert.Equal(t, 0, meta.Len())
}

func TestRenderPreservesBodyAndOrder(t *testing.T) {
	original := "---\nstatus: draft\ntitle: \"Quoted\"\n---\n# Body\n\ntext with trailing space \n"
	meta, blk, err := Decode([]byte(original), "---")
	require.NoError(t, err)
	meta.Set("tags", []string{"general"})

	out, err := Render(meta, blk.Body, "---")
	require.NoError(t, err)

	again, blk2, err := Decode(out, "---")
	require.NoError(t, err)
	assert.Equal(t, string(blk.Body), string(blk2.Body))
	assert.Equal(t, []string{"status", "title", "tags"}, again.Keys())
	assert.Contains(t, string(out), `title: "Quoted"`)
	assert.Equal(t, []string{"general"}, again.Strings("tags"))
}

func TestRenderEmptyMetadata(t *testing.T) {
	out, err := Render(NewMetadata(), []byte("body"), "")
	require.NoError(t, err)
	assert.Equal(t, "---\n---\nbody", string(out))
}

func TestAccessor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	body := "# Heading\n\nSome *text*.\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	a := NewAccessor("")
	has, err := a.Has(path)
	require.NoError(t, err)
	assert.False(t, has)

	meta, err := a.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 0, meta.Len())

	meta.Set("title", "Heading")
	require.NoError(t, a.Write(path, meta, true))

	has, err = a.Has(path)
	require.NoError(t, err)
	assert.True(t, has)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	_, blk, err := Decode(content, "---")
	require.NoError(t, err)
	assert.Equal(t, body, string(blk.Body))

	_, err = a.Parse(filepath.Join(dir, "missing.md"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAccessorParseErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: [x\n---\n"), 0o644))
	_, err := NewAccessor("---").Parse(path)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, path, perr.Path)
}
