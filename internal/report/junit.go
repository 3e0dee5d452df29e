package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/issue"
)

func newJUnit() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc, doc.CreateElement("testsuites")
}

func suite(parent *etree.Element, name string, tests, failures int) *etree.Element {
	s := parent.CreateElement("testsuite")
	s.CreateAttr("name", name)
	s.CreateAttr("tests", fmt.Sprint(tests))
	s.CreateAttr("failures", fmt.Sprint(failures))
	return s
}

func failure(tc *etree.Element, issues []issue.Issue) {
	var lines []string
	for _, is := range issues {
		lines = append(lines, is.String())
	}
	f := tc.CreateElement("failure")
	f.CreateAttr("message", fmt.Sprintf("%d issue(s)", len(issues)))
	f.CreateAttr("type", string(issues[0].Severity))
	f.SetText(strings.Join(lines, "\n"))
}

func writeDoc(w io.Writer, doc *etree.Document) error {
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

// junitValidation emits one testcase per processed document; a document
// fails when any of its issues reaches the fail-on threshold.
func junitValidation(w io.Writer, rep *engine.Report) error {
	doc, root := newJUnit()
	paths := rep.Paths()

	failing := 0
	for _, p := range paths {
		if engine.ExceedsThreshold(rep.Results[p], rep.FailOn) {
			failing++
		}
	}
	s := suite(root, "docneat.validation", len(paths), failing)
	s.CreateAttr("timestamp", rep.StartedAt.Format("2006-01-02T15:04:05"))
	s.CreateAttr("time", fmt.Sprintf("%.3f", rep.Duration.Seconds()))

	for _, p := range paths {
		tc := s.CreateElement("testcase")
		tc.CreateAttr("classname", "docneat")
		tc.CreateAttr("name", displayPath(rep.Root, p))
		issues := rep.Results[p]
		if engine.ExceedsThreshold(issues, rep.FailOn) {
			failure(tc, issues)
		}
	}

	if rep.Conflicts != nil {
		addConflictSuite(root, rep.Conflicts)
	}
	return writeDoc(w, doc)
}

func junitConflicts(w io.Writer, set ConflictSet) error {
	doc, root := newJUnit()
	addConflictSuite(root, set.Report)
	return writeDoc(w, doc)
}

// addConflictSuite emits one testcase per enabled conflict category.
func addConflictSuite(root *etree.Element, rep conflicts.Report) {
	var cats []string
	failures := 0
	for _, c := range conflicts.Categories {
		if issues, ok := rep[c]; ok {
			cats = append(cats, c)
			if len(issues) > 0 {
				failures++
			}
		}
	}
	s := suite(root, "docneat.conflicts", len(cats), failures)
	for _, c := range cats {
		tc := s.CreateElement("testcase")
		tc.CreateAttr("classname", "docneat.conflicts")
		tc.CreateAttr("name", c)
		if issues := rep[c]; len(issues) > 0 {
			failure(tc, issues)
		}
	}
}
