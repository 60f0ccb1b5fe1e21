package formvalidator

import (
	"fmt"

	"github.com/dmitrymomot/liveform/pkg/dom"
)

// Binding holds the element handles of one validated field. Handles are resolved
// once and reused for every revalidation.
type Binding struct {
	Form      *dom.Element
	Field     *dom.Element
	ErrorList *dom.Element
}

// Value returns the current field value.
func (b *Binding) Value() string {
	return b.Field.Value()
}

// Bind resolves fieldID inside form and its error list. The error list is the
// element right before the field's container when it carries the errorlist class;
// otherwise an empty list is created and inserted there, so every field owns
// exactly one list.
func Bind(form *dom.Element, fieldID string) (*Binding, error) {
	if form == nil {
		return nil, ErrFormNotFound
	}

	field := form.Find(fieldID)
	if field == nil {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, fieldID)
	}

	container := field.Parent()
	if container == nil || container.Is(form) {
		return nil, fmt.Errorf("%w: %q", ErrContainerNotFound, fieldID)
	}

	doc := form.Document()
	if prev := container.PreviousElementSibling(); prev != nil && prev.HasClass(ErrorListClass) {
		if prev.ID() == "" {
			prev.SetAttr("id", doc.UniqueID(fieldID+"-errorlist"))
		}
		return &Binding{Form: form, Field: field, ErrorList: prev}, nil
	}

	list := doc.CreateElement("ul")
	list.AddClass(ErrorListClass)
	list.SetAttr("id", doc.UniqueID(fieldID+"-errorlist"))
	container.Parent().InsertBefore(list, container)

	return &Binding{Form: form, Field: field, ErrorList: list}, nil
}
