package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/docneat/pkg/logger"
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "meta", "cache.json"), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestPutPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta", "cache.json")
	s, err := Open(path, logger.Nop())
	require.NoError(t, err)

	e := Entry{Hash: "abc", ValidationStatus: StatusFailed, ErrorCount: 2, WarningCount: 1,
		LastProcessed: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.Put("docs/a.md", e))

	again, err := Open(path, logger.Nop())
	require.NoError(t, err)
	got, ok := again.Get("docs/a.md")
	require.True(t, ok)
	assert.Equal(t, "abc", got.Hash)
	assert.Equal(t, 2, got.ErrorCount)
	assert.True(t, e.LastProcessed.Equal(got.LastProcessed))

	var raw map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, Version, raw["version"])
	assert.Contains(t, raw, "last_updated")
	doc := raw["documents"].(map[string]any)["docs/a.md"].(map[string]any)
	for _, k := range []string{"hash", "last_processed", "last_modified", "validation_status", "error_count", "warning_count"} {
		assert.Contains(t, doc, k)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestVersionMismatchDiscardsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	old := `{"version":"0.9.0","last_updated":"2024-01-01T00:00:00Z","documents":{"a.md":{"hash":"x"},"b.md":{"hash":"y"}}}`
	require.NoError(t, os.WriteFile(path, []byte(old), 0o644))

	var buf bytes.Buffer
	s, err := Open(path, logger.New(logger.Config{Level: logger.InfoLevel}, &buf))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "discarded=2")
}

func TestCorruptCacheIsTypedError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Open(path, logger.Nop())
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "decode", cerr.Op)
}

func TestSaveFailureIsTypedError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	s, err := Open(filepath.Join(blocker, "cache.json"), logger.Nop())
	require.NoError(t, err)

	err = s.Put("a.md", Entry{Hash: "h"})
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
}

func TestDeleteClearAndStats(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cache.json"), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Put("a.md", Entry{ValidationStatus: StatusPassed, WarningCount: 1}))
	require.NoError(t, s.Put("b.md", Entry{ValidationStatus: StatusFailed, ErrorCount: 3}))

	st := s.Stats()
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Passed)
	assert.Equal(t, 1, st.Failed)
	assert.Equal(t, 3, st.TotalErrors)
	assert.Equal(t, 1, st.TotalWarnings)
	assert.False(t, st.LastUpdated.IsZero())

	require.NoError(t, s.Delete("a.md", "missing.md"))
	assert.Equal(t, []string{"b.md"}, s.Keys())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
}

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	content := bytes.Repeat([]byte("0123456789"), 1000)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := Fingerprint(path)
	require.NoError(t, err)
	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)

	_, err = Fingerprint(filepath.Join(t.TempDir(), "none.md"))
	assert.Error(t, err)
}
