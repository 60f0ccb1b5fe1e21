// Package modal renders contextual help popups into a server-side document.
//
// All popups of a page share one container appended to the body. At most one
// popup is open at a time; opening another replaces it, and a click anywhere on
// the container dismisses it.
package modal

import (
	"errors"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/liveform/pkg/dom"
)

const (
	ContainerID  = "modal-popup-container"
	BackgroundID = "modal-popup-background"
	PopupID      = "modal-popup"
	InfoID       = "modal-popup-info"

	keyAttr = "data-popup"
)

// DefaultInfo is appended below the popup content.
const DefaultInfo = "(Click anywhere to close this help window.)"

var ErrNoBody = errors.New("modal: document has no body")

// Popup is a help popup with fixed content.
type Popup struct {
	doc       *dom.Document
	container *dom.Element
	key       string
	content   string
	info      string
}

// Option configures a Popup.
type Option func(*Popup)

// WithInfo replaces the dismiss hint shown under the content.
func WithInfo(info string) Option {
	return func(p *Popup) { p.info = info }
}

// New creates a popup identified by key with the given HTML content. The shared
// container is created on first use. Content is sanitized with a user-content
// policy.
func New(doc *dom.Document, key, content string, opts ...Option) (*Popup, error) {
	container, err := ensureContainer(doc)
	if err != nil {
		return nil, err
	}

	p := &Popup{
		doc:       doc,
		container: container,
		key:       key,
		content:   bluemonday.UGCPolicy().Sanitize(content),
		info:      DefaultInfo,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Key returns the popup identifier.
func (p *Popup) Key() string { return p.key }

// IsOpen reports whether this popup is currently displayed.
func (p *Popup) IsOpen() bool {
	el := p.doc.ByID(PopupID)
	if el == nil {
		return false
	}
	key, _ := el.Attr(keyAttr)
	return key == p.key
}

// Toggle opens the popup, or closes it when it is already open.
func (p *Popup) Toggle() {
	if p.IsOpen() {
		Dismiss(p.doc)
		return
	}
	p.open()
}

func (p *Popup) open() {
	Dismiss(p.doc)

	el := p.doc.CreateElement("div")
	el.SetAttr("id", PopupID)
	el.SetAttr(keyAttr, p.key)
	html := p.content + `<br/><p id="` + InfoID + `">` + bluemonday.StrictPolicy().Sanitize(p.info) + `</p>`
	if err := el.SetInnerHTML(html); err != nil {
		_ = el.SetInnerHTML(p.content)
	}

	p.container.AppendChild(el)
	p.container.SetAttr("style", "display: flex")
}

// Dismiss closes whichever popup is open and hides the container.
func Dismiss(doc *dom.Document) {
	container := doc.ByID(ContainerID)
	if container == nil {
		return
	}
	if el := doc.ByID(PopupID); el != nil {
		_ = el.Remove()
	}
	container.SetAttr("style", "display: none")
}

func ensureContainer(doc *dom.Document) (*dom.Element, error) {
	if c := doc.ByID(ContainerID); c != nil {
		return c, nil
	}

	body := doc.Body()
	if body == nil {
		return nil, ErrNoBody
	}

	container := doc.CreateElement("div")
	container.SetAttr("id", ContainerID)
	container.SetAttr("style", "display: none")

	background := doc.CreateElement("div")
	background.SetAttr("id", BackgroundID)
	container.AppendChild(background)

	body.AppendChild(container)
	return container, nil
}
