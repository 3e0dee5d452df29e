package fix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/docneat/pkg/safeio"
)

const (
	backupTimeFormat = "20060102_150405"
	maxBackupSuffix  = 1000
)

// BackupError reports a failed pre-write backup. The document is unchanged.
type BackupError struct {
	Path string
	Dir  string
	Err  error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup %s into %s: %v", e.Path, e.Dir, e.Err)
}

func (e *BackupError) Unwrap() error { return e.Err }

// backup copies path into the backup directory as {stem}_{timestamp}{ext},
// adding _N when that name is taken.
func (f *Fixer) backup(path string) (string, error) {
	dir := f.opts.BackupDir
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", &BackupError{Path: path, Dir: dir, Err: err}
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := f.now().Format(backupTimeFormat)

	for n := 0; n < maxBackupSuffix; n++ {
		name := fmt.Sprintf("%s_%s%s", stem, stamp, ext)
		if n > 0 {
			name = fmt.Sprintf("%s_%s_%d%s", stem, stamp, n, ext)
		}
		target := filepath.Join(dir, name)
		err := safeio.CopyFileExclusive(path, target)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", &BackupError{Path: path, Dir: dir, Err: err}
		}
	}
	return "", &BackupError{Path: path, Dir: dir, Err: errors.New("no free backup name")}
}
