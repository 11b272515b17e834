package state

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/neubot/nbwatch/internal/format"
	"golang.org/x/net/html/charset"
	"github.com/neubot/nbwatch/internal/logger"
)

// maxDepth bounds element nesting so a hostile document cannot grow the
// parse stack without limit.
const maxDepth = 64

// Parser turns state documents into Snapshots. Missing or empty fields
// degrade to zero values; only a document that is not well-formed XML is
// reported as an error.
type Parser struct {
	log logger.Logger
}

// NewParser creates a parser that reports tolerated anomalies to log.
func NewParser(log logger.Logger) *Parser {
	if log == nil {
		log = logger.Noop()
	}
	return &Parser{log: log}
}

// Parse is a convenience wrapper around a silent Parser.
func Parse(data []byte) (Snapshot, error) {
	return NewParser(nil).Parse(data)
}

// Parse decodes one state document.
//
// Elements are matched by name anywhere in the document, the same way a
// descendant selector would match them:
//
//	state@t          cursor
//	active           "true" means the daemon is running
//	activity         label, current="true" marks the current one
//	test/name        test name
//	test/result      tag, unit attributes, text is the value
//	test/task        state attribute, text is the label
func (p *Parser) Parse(data []byte) (Snapshot, error) {
	doc, err := buildTree(bytes.NewReader(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse state document: %w", err)
	}

	var snap Snapshot

	if root := doc.find("state"); root != nil {
		snap.Cursor = strings.TrimSpace(root.attr("t"))
	}

	if active := doc.find("active"); active != nil {
		snap.DaemonActive = format.ParseText(active.text()) == "true"
	}

	seenCurrent := false
	for _, n := range doc.findAll("activity") {
		a := Activity{Label: format.ParseText(n.text())}
		if n.attr("current") == "true" {
			if seenCurrent {
				p.log.Warn("activity %q also claims to be current, keeping the first one", a.Label)
			} else {
				a.Current = true
				seenCurrent = true
			}
		}
		snap.Activities = append(snap.Activities, a)
	}

	if t := doc.find("test"); t != nil {
		snap.Test = p.parseTest(t)
	}

	return snap, nil
}

func (p *Parser) parseTest(n *node) *Test {
	test := &Test{Results: make(map[string]Result)}

	if name := n.find("name"); name != nil {
		test.Name = format.ParseText(name.text())
	}

	// Results are indexed before tasks so that a task can refer to a
	// result appearing anywhere in the section.
	for _, r := range n.findAll("result") {
		tag := r.attr("tag")
		if tag == "" {
			p.log.Debug("ignoring result without tag")
			continue
		}
		test.Results[tag] = Result{
			Value: format.ParseText(r.text()),
			Unit:  r.attr("unit"),
		}
	}

	for _, t := range n.findAll("task") {
		test.Tasks = append(test.Tasks, Task{
			Label: format.ParseText(t.text()),
			State: t.attr("state"),
		})
	}

	return test
}

// node is a minimal element tree. The document itself is a nameless node
// whose only child is the root element.
type node struct {
	name     string
	attrs    []xml.Attr
	children []*node
	buf      strings.Builder
}

// text returns the concatenated character data of the node and all of its
// descendants in document order.
func (n *node) text() string {
	return n.buf.String()
}

func (n *node) attr(name string) string {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// find returns the first descendant named name in document order.
func (n *node) find(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant named name in document order.
func (n *node) findAll(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
		out = append(out, c.findAll(name)...)
	}
	return out
}

func buildTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	// Agents may declare a legacy encoding such as ISO-8859-1.
	dec.CharsetReader = charset.NewReaderLabel
	doc := &node{}
	stack := []*node{doc}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > maxDepth {
				return nil, fmt.Errorf("elements nested deeper than %d", maxDepth)
			}
			child := &node{name: t.Name.Local, attrs: t.Attr}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, child)
			stack = append(stack, child)
		case xml.EndElement:
			child := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].buf.WriteString(child.text())
		case xml.CharData:
			stack[len(stack)-1].buf.Write(t)
		}
	}

	if len(doc.children) == 0 {
		return nil, fmt.Errorf("document has no root element")
	}
	return doc, nil
}
