// Package mdscan splits markdown documents into classified lines and
// extracts inline links. It knows about the metadata block and fenced code
// so callers can skip both.
package mdscan

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fulmenhq/docneat/pkg/frontmatter"
)

// Line is one physical line of a document.
type Line struct {
	Num  int // 1-based, file-absolute
	Text string
	// Metadata is set for lines of the leading metadata block.
	Metadata bool
	// Fence is set for ``` opening and closing lines.
	Fence bool
	// InCode is set for lines between an opening and closing fence.
	InCode bool
}

// Code reports whether the line is a fence or fenced content.
func (l Line) Code() bool { return l.Fence || l.InCode }

// Split breaks content into lines. A trailing newline does not produce an
// extra empty line and a trailing \r is removed from each line.
func Split(content []byte, delim string) []Line {
	text := string(content)
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}

	metaEnd := 0
	if blk, ok := frontmatter.Split(content, delim); ok {
		metaEnd = blk.EndLine
	}

	lines := make([]Line, 0, len(raw))
	inCode := false
	for i, r := range raw {
		ln := Line{Num: i + 1, Text: strings.TrimSuffix(r, "\r")}
		if ln.Num <= metaEnd {
			ln.Metadata = true
			lines = append(lines, ln)
			continue
		}
		if IsFence(ln.Text) {
			ln.Fence = true
			inCode = !inCode
		} else {
			ln.InCode = inCode
		}
		lines = append(lines, ln)
	}
	return lines
}

// IsFence reports whether a line opens or closes a fenced code block.
func IsFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// FenceLanguage returns the info-string language of an opening fence.
func FenceLanguage(line string) string {
	rest := strings.TrimPrefix(strings.TrimSpace(line), "```")
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Link is an inline markdown link.
type Link struct {
	Text   string
	Target string
	Line   int
}

// Links returns the inline links outside metadata and fenced code.
func Links(lines []Line) []Link {
	var out []Link
	for _, ln := range lines {
		if ln.Metadata || ln.Code() {
			continue
		}
		for _, m := range linkPattern.FindAllStringSubmatch(ln.Text, -1) {
			out = append(out, Link{Text: m[1], Target: strings.TrimSpace(m[2]), Line: ln.Num})
		}
	}
	return out
}

// TargetKind classifies a link target.
type TargetKind int

const (
	Relative TargetKind = iota
	Anchor
	Remote
	OtherScheme
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// Classify returns the kind of a link target.
func Classify(target string) TargetKind {
	t := strings.TrimSpace(target)
	lower := strings.ToLower(t)
	switch {
	case strings.HasPrefix(t, "#"):
		return Anchor
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "ftp://"):
		return Remote
	case strings.HasPrefix(t, "//"):
		return Remote
	case schemePattern.MatchString(t):
		return OtherScheme
	}
	return Relative
}

// CleanTarget strips an optional title, angle brackets, query and fragment
// from a relative target and percent-decodes it. ok is false when nothing
// remains.
func CleanTarget(target string) (string, bool) {
	t := strings.TrimSpace(target)
	if strings.HasPrefix(t, "<") {
		if end := strings.Index(t, ">"); end > 0 {
			t = t[1:end]
		}
	} else if fields := strings.Fields(t); len(fields) > 0 {
		t = fields[0]
	}
	if i := strings.IndexAny(t, "#?"); i >= 0 {
		t = t[:i]
	}
	if t == "" {
		return "", false
	}
	if dec, err := url.PathUnescape(t); err == nil {
		t = dec
	}
	return t, true
}

// Resolve joins a relative target onto the linking document's directory.
func Resolve(docPath, target string) (string, bool) {
	clean, ok := CleanTarget(target)
	if !ok {
		return "", false
	}
	if filepath.IsAbs(clean) {
		return filepath.Clean(clean), true
	}
	return filepath.Join(filepath.Dir(docPath), filepath.FromSlash(clean)), true
}
