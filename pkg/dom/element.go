package dom

import (
	"bytes"
	"errors"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle to an element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.node.Data }

// ID returns the id attribute or an empty string.
func (e *Element) ID() string {
	v, _ := attr(e.node, "id")
	return v
}

// Is reports whether both handles point at the same node.
func (e *Element) Is(other *Element) bool {
	return other != nil && e.node == other.node
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return attr(e.node, name)
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := attr(e.node, name)
	return ok
}

// SetAttr sets an attribute, marking the element dirty only when the value changes.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			if a.Val == value {
				return
			}
			e.node.Attr[i].Val = value
			e.doc.touch(e.node)
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	e.doc.touch(e.node)
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	before := len(e.node.Attr)
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == name
	})
	if len(e.node.Attr) != before {
		e.doc.touch(e.node)
	}
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := attr(e.node, "class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.Classes(), name)
}

// AddClass appends the class when missing.
func (e *Element) AddClass(name string) {
	classes := e.Classes()
	if slices.Contains(classes, name) {
		return
	}
	e.SetAttr("class", strings.Join(append(classes, name), " "))
}

// RemoveClass drops every occurrence of the class.
func (e *Element) RemoveClass(name string) {
	classes := e.Classes()
	kept := slices.DeleteFunc(slices.Clone(classes), func(c string) bool { return c == name })
	if len(kept) == len(classes) {
		return
	}
	if len(kept) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// ReplaceClasses drops the remove classes, then appends the add classes that are
// missing. The class attribute is written once, and only when it changes.
func (e *Element) ReplaceClasses(remove []string, add ...string) {
	classes := e.Classes()
	next := slices.DeleteFunc(slices.Clone(classes), func(c string) bool {
		return slices.Contains(remove, c)
	})
	for _, c := range add {
		if !slices.Contains(next, c) {
			next = append(next, c)
		}
	}
	switch {
	case slices.Equal(classes, next):
	case len(next) == 0:
		e.RemoveAttr("class")
	default:
		e.SetAttr("class", strings.Join(next, " "))
	}
}

// Parent returns the parent element or nil.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// PreviousElementSibling skips text and comment nodes.
func (e *Element) PreviousElementSibling() *Element {
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return e.doc.wrap(s)
		}
	}
	return nil
}

// Find returns the first descendant with the given id or nil.
func (e *Element) Find(id string) *Element {
	if id == "" {
		return nil
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		n := findNode(c, func(n *html.Node) bool {
			v, ok := attr(n, "id")
			return ok && v == id
		})
		if n != nil {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Contains reports whether other is a descendant of e.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for p := other.node.Parent; p != nil; p = p.Parent {
		if p == e.node {
			return true
		}
	}
	return false
}

// InsertBefore inserts child into e right before ref. A nil ref appends.
func (e *Element) InsertBefore(child, ref *Element) {
	detach(child.node)
	var refNode *html.Node
	if ref != nil {
		refNode = ref.node
	}
	e.node.InsertBefore(child.node, refNode)
	e.doc.touch(e.node)
}

// AppendChild appends child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	e.InsertBefore(child, nil)
}

// Remove detaches e from its parent.
func (e *Element) Remove() error {
	p := e.node.Parent
	if p == nil {
		return ErrNotAttached
	}
	p.RemoveChild(e.node)
	e.doc.touch(p)
	return nil
}

// InnerHTML renders the children of e.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// SetInnerHTML replaces the children of e with the parsed fragment.
func (e *Element) SetInnerHTML(fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), e.node)
	if err != nil {
		return errors.Join(ErrParseFragment, err)
	}
	if e.InnerHTML() == renderNodes(nodes) {
		return nil
	}
	removeChildren(e.node)
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	e.doc.touch(e.node)
	return nil
}

// Clear removes every child of e.
func (e *Element) Clear() {
	if e.node.FirstChild == nil {
		return
	}
	removeChildren(e.node)
	e.doc.touch(e.node)
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var sb strings.Builder
	collectText(e.node, &sb)
	return sb.String()
}

// OuterHTML renders e including its own tag.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// Value returns the current value of a form control: the value attribute for
// inputs, the text of a textarea, the selected option of a select.
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Textarea:
		return e.Text()
	case atom.Select:
		var first *html.Node
		for _, opt := range options(e.node) {
			if first == nil {
				first = opt
			}
			if _, ok := attr(opt, "selected"); ok {
				return optionValue(opt)
			}
		}
		if first != nil {
			return optionValue(first)
		}
		return ""
	default:
		v, _ := attr(e.node, "value")
		return v
	}
}

// SetValue updates the value of a form control.
func (e *Element) SetValue(v string) {
	switch e.node.DataAtom {
	case atom.Textarea:
		if e.Text() == v {
			return
		}
		removeChildren(e.node)
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: v})
		e.doc.touch(e.node)
	case atom.Select:
		for _, opt := range options(e.node) {
			el := e.doc.wrap(opt)
			if optionValue(opt) == v {
				el.SetAttr("selected", "")
			} else {
				el.RemoveAttr("selected")
			}
		}
	default:
		e.SetAttr("value", v)
	}
}

// SyncValue records a value the browser already shows. Unlike SetValue it does
// not mark the element dirty, so no patch sends the value back.
func (e *Element) SyncValue(v string) {
	e.doc.quiet = true
	defer func() { e.doc.quiet = false }()
	e.SetValue(v)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func renderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return ""
		}
	}
	return buf.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			collectText(c, sb)
		}
	}
}

func options(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == atom.Option {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func optionValue(n *html.Node) string {
	if v, ok := attr(n, "value"); ok {
		return v
	}
	var sb strings.Builder
	collectText(n, &sb)
	return strings.TrimSpace(sb.String())
}
