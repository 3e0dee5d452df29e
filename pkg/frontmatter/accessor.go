package frontmatter

import (
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/docneat/pkg/safeio"
)

// Accessor reads and writes metadata blocks on disk.
type Accessor struct {
	Delimiter string
}

// NewAccessor returns an accessor for delim (DefaultDelimiter when empty).
func NewAccessor(delim string) *Accessor {
	if delim == "" {
		delim = DefaultDelimiter
	}
	return &Accessor{Delimiter: delim}
}

// Has reports whether the file starts with a metadata block.
func (a *Accessor) Has(path string) (bool, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- document path supplied by the scanner
	if err != nil {
		return false, err
	}
	_, ok := Split(content, a.Delimiter)
	return ok, nil
}

// Parse returns the file's metadata. A missing or empty block yields empty
// metadata; malformed YAML yields a *ParseError.
func (a *Accessor) Parse(path string) (*Metadata, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- document path supplied by the scanner
	if err != nil {
		return nil, err
	}
	meta, _, err := Decode(content, a.Delimiter)
	if errors.Is(err, ErrNoBlock) {
		return NewMetadata(), nil
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.Path = path
		return nil, perr
	}
	return meta, err
}

// Write replaces the metadata block of path with meta. With preserveBody the
// existing body is kept byte for byte (the whole file when it had no block);
// otherwise the body is dropped.
func (a *Accessor) Write(path string, meta *Metadata, preserveBody bool) error {
	content, err := os.ReadFile(path) // #nosec G304 -- document path supplied by the scanner
	if err != nil {
		return err
	}
	var body []byte
	if preserveBody {
		blk, _ := Split(content, a.Delimiter)
		body = blk.Body
	}
	out, err := Render(meta, body, a.Delimiter)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return safeio.WriteFileAtomic(path, out)
}
