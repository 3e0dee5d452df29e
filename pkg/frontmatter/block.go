// Package frontmatter reads and writes the metadata block at the head of a
// markdown document.
//
// A block starts at byte 0 with a line holding only the delimiter, followed
// by YAML content and a second delimiter line. Everything after the closing
// line is the body and is never modified by Render.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDelimiter is the conventional block marker.
const DefaultDelimiter = "---"

// ErrNoBlock is returned by Decode when the content has no metadata block.
var ErrNoBlock = errors.New("no metadata block")

// ParseError reports a block that exists but cannot be decoded.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "metadata"
	}
	return fmt.Sprintf("%s: malformed metadata block: %v", loc, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Block is the result of Split.
type Block struct {
	// Raw is the YAML text between the delimiter lines.
	Raw []byte
	// Body is every byte after the closing delimiter line.
	Body []byte
	// EndLine is the 1-based line number of the closing delimiter.
	EndLine int
}

func isDelimiterLine(line []byte, delim string) bool {
	return string(bytes.TrimRight(line, " \t\r")) == delim
}

// Split locates the metadata block. ok is false when content does not begin
// with a delimiter line or the block is never closed; body is then the whole
// content.
func Split(content []byte, delim string) (Block, bool) {
	if delim == "" {
		delim = DefaultDelimiter
	}
	nl := bytes.IndexByte(content, '\n')
	if nl < 0 || !isDelimiterLine(content[:nl], delim) {
		return Block{Body: content}, false
	}

	start := nl + 1
	pos := start
	line := 2
	for pos <= len(content) {
		end := bytes.IndexByte(content[pos:], '\n')
		var cur []byte
		next := len(content) + 1
		if end < 0 {
			cur = content[pos:]
		} else {
			cur = content[pos : pos+end]
			next = pos + end + 1
		}
		if isDelimiterLine(cur, delim) {
			body := []byte{}
			if next <= len(content) {
				body = content[next:]
			}
			return Block{Raw: content[start:pos], Body: body, EndLine: line}, true
		}
		if end < 0 {
			break
		}
		pos = next
		line++
	}
	return Block{Body: content}, false
}

// Decode parses the metadata block of content. It returns ErrNoBlock when
// there is none and a *ParseError when the block is not a YAML mapping.
// An empty block yields empty metadata.
func Decode(content []byte, delim string) (*Metadata, Block, error) {
	blk, ok := Split(content, delim)
	if !ok {
		return nil, blk, ErrNoBlock
	}
	meta := NewMetadata()
	if len(bytes.TrimSpace(blk.Raw)) == 0 {
		return meta, blk, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(blk.Raw, &doc); err != nil {
		return nil, blk, &ParseError{Err: err}
	}
	if len(doc.Content) == 0 {
		return meta, blk, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return meta, blk, nil
	}
	if err := meta.UnmarshalYAML(root); err != nil {
		return nil, blk, &ParseError{Line: root.Line + 1, Err: err}
	}
	return meta, blk, nil
}

// Encode renders meta as YAML with two-space indentation.
func Encode(meta *Metadata) ([]byte, error) {
	var buf bytes.Buffer
	if meta.Len() == 0 {
		return nil, nil
	}
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render assembles a document from meta and body.
func Render(meta *Metadata, body []byte, delim string) ([]byte, error) {
	if delim == "" {
		delim = DefaultDelimiter
	}
	raw, err := Encode(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	var out bytes.Buffer
	out.Grow(len(raw) + len(body) + 2*len(delim) + 2)
	out.WriteString(delim)
	out.WriteByte('\n')
	out.Write(raw)
	if len(raw) > 0 && !strings.HasSuffix(string(raw), "\n") {
		out.WriteByte('\n')
	}
	out.WriteString(delim)
	out.WriteByte('\n')
	out.Write(body)
	return out.Bytes(), nil
}
