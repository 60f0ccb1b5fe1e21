package dom

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Patch is the rendered outer HTML of an element addressed by its id.
type Patch struct {
	ID   string
	HTML string
}

// Document is a parsed HTML page with dirty tracking.
type Document struct {
	root   *html.Node
	dirty  []*html.Node
	marked map[*html.Node]struct{}
	nextID int
	quiet  bool
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Join(ErrParseDocument, err)
	}
	return &Document{
		root:   root,
		marked: make(map[*html.Node]struct{}),
	}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the whole document, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// ByID returns the first element with the given id or nil.
func (d *Document) ByID(id string) *Element {
	if id == "" {
		return nil
	}
	n := findNode(d.root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	return d.wrap(n)
}

// Form returns the form element with the given id or nil.
func (d *Document) Form(id string) *Element {
	el := d.ByID(id)
	if el == nil || el.node.DataAtom != atom.Form {
		return nil
	}
	return el
}

// Body returns the body element, or nil for frameset documents.
func (d *Document) Body() *Element {
	n := findNode(d.root, func(n *html.Node) bool {
		return n.DataAtom == atom.Body
	})
	return d.wrap(n)
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) *Element {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	return d.wrap(n)
}

// UniqueID returns an id with the given prefix that is not used in the document.
func (d *Document) UniqueID(prefix string) string {
	if d.ByID(prefix) == nil {
		return prefix
	}
	for {
		d.nextID++
		id := prefix + "-" + strconv.Itoa(d.nextID)
		if d.ByID(id) == nil {
			return id
		}
	}
}

// TakeDirty returns patches for every element mutated since the previous call and
// resets the dirty set. Elements without an id are patched through their closest
// ancestor that has one; nested dirty elements collapse into the outermost one.
func (d *Document) TakeDirty() []Patch {
	if len(d.dirty) == 0 {
		return nil
	}

	targets := make([]*html.Node, 0, len(d.dirty))
	seen := make(map[*html.Node]struct{}, len(d.dirty))
	for _, n := range d.dirty {
		t := addressable(n)
		if t == nil || !attached(t, d.root) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}

	patches := make([]Patch, 0, len(targets))
	for _, t := range targets {
		if hasAncestorIn(t, seen) {
			continue
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, t); err != nil {
			continue
		}
		id, _ := attr(t, "id")
		patches = append(patches, Patch{ID: id, HTML: buf.String()})
	}

	d.dirty = d.dirty[:0]
	clear(d.marked)
	return patches
}

func (d *Document) touch(n *html.Node) {
	if d.quiet {
		return
	}
	if _, ok := d.marked[n]; ok {
		return
	}
	d.marked[n] = struct{}{}
	d.dirty = append(d.dirty, n)
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func addressable(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if id, ok := attr(n, "id"); ok && id != "" {
			return n
		}
	}
	return nil
}

func attached(n, root *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

func hasAncestorIn(n *html.Node, set map[*html.Node]struct{}) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
