package ingest

import (
	"bytes"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

var (
	chromeTags = []string{
		"nav", "header", "footer", "aside", "script", "style", "noscript",
		"iframe", "object", "embed", "form", "input", "button",
	}
	chromeClasses = []string{
		"nav", "navbar", "navigation", "sidebar", "menu", "toc",
		"table-of-contents", "footer", "header", "ad", "advertisement",
		"social", "share", "comments", "related", "breadcrumb",
	}
)

// Converted is an HTML page turned into markdown.
type Converted struct {
	Title    string
	Markdown string
}

// Converter extracts the main content of an HTML page as markdown.
type Converter struct {
	md *md.Converter
}

func NewConverter() *Converter {
	c := md.NewConverter("", true, nil)
	c.Use(plugin.GitHubFlavored())
	return &Converter{md: c}
}

// Convert extracts the title and main content of page.
func (c *Converter) Convert(page []byte) (*Converted, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	var content, title string
	if err != nil {
		content = styleRe.ReplaceAllString(scriptRe.ReplaceAllString(string(page), ""), "")
	} else {
		title = pageTitle(doc)
		content = mainContent(doc)
	}

	out, err := c.md.ConvertString(content)
	if err != nil {
		return nil, err
	}
	out = tidy(out)
	if title == "" {
		title = firstHeading(out)
	}
	return &Converted{Title: title, Markdown: out}, nil
}

func pageTitle(doc *html.Node) string {
	if n := find(doc, func(n *html.Node) bool { return n.Data == "title" }); n != nil && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	if n := find(doc, func(n *html.Node) bool { return n.Data == "h1" }); n != nil {
		return strings.TrimSpace(textOf(n))
	}
	return ""
}

// mainContent prefers main, article or role=main; otherwise the body with
// navigation chrome removed.
func mainContent(doc *html.Node) string {
	for _, match := range []func(*html.Node) bool{
		func(n *html.Node) bool { return n.Data == "main" },
		func(n *html.Node) bool { return n.Data == "article" },
		func(n *html.Node) bool { return attr(n, "role") == "main" },
	} {
		if n := find(doc, match); n != nil {
			return render(n)
		}
	}

	tags := map[string]bool{}
	for _, t := range chromeTags {
		tags[t] = true
	}
	classes := map[string]bool{}
	for _, c := range chromeClasses {
		classes[c] = true
	}
	remove(doc, func(n *html.Node) bool {
		if tags[n.Data] {
			return true
		}
		for _, c := range strings.Fields(strings.ToLower(attr(n, "class"))) {
			if classes[c] {
				return true
			}
		}
		return false
	})
	if body := find(doc, func(n *html.Node) bool { return n.Data == "body" }); body != nil {
		return render(body)
	}
	return render(doc)
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func remove(n *html.Node, match func(*html.Node) bool) {
	var doomed []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			doomed = append(doomed, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	for _, node := range doomed {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func render(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

// tidy trims trailing spaces and collapses runs of blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}

func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if t := strings.TrimSpace(line); strings.HasPrefix(t, "# ") {
			return strings.TrimSpace(t[2:])
		}
	}
	return ""
}
