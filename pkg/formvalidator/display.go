package formvalidator

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// ValidClass marks a field that passed validation.
	ValidClass = "valid"
	// ErrorClass marks a field that failed validation.
	ErrorClass = "error"
	// ErrorListClass identifies the message list rendered before a field container.
	ErrorListClass = "errorlist"
)

// Display renders the validation state of a bound field.
type Display interface {
	MarkInvalid(b *Binding, message string)
	MarkValid(b *Binding)
}

// DOMDisplay toggles the state classes on the field element and rewrites its
// error list. Message markup is sanitized so only links and basic inline
// formatting reach the page.
type DOMDisplay struct {
	policy *bluemonday.Policy
}

// NewDOMDisplay returns a display with the default message policy.
func NewDOMDisplay() *DOMDisplay {
	return &DOMDisplay{policy: messagePolicy()}
}

// MarkInvalid replaces the error list content with exactly one message item.
// Repeating the same state leaves the document untouched.
func (d *DOMDisplay) MarkInvalid(b *Binding, message string) {
	b.Field.ReplaceClasses([]string{ValidClass}, ErrorClass)

	item := "<li>" + d.policy.Sanitize(message) + "</li>"
	if err := b.ErrorList.SetInnerHTML(item); err != nil {
		_ = b.ErrorList.SetInnerHTML("<li>" + html.EscapeString(message) + "</li>")
	}
}

// MarkValid clears the error list.
func (d *DOMDisplay) MarkValid(b *Binding) {
	b.Field.ReplaceClasses([]string{ErrorClass}, ValidClass)
	b.ErrorList.Clear()
}

func messagePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "em", "br", "code")
	p.AllowAttrs("href", "id").OnElements("a")
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}
