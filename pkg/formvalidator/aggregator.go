package formvalidator

import "github.com/dmitrymomot/liveform/pkg/dom"

// Aggregator keeps a submit control disabled until all of its fields are valid.
// It only reads validity flags and never touches the fields' markup.
type Aggregator struct {
	submit *dom.Element
	fields []Validatable
}

// NewAggregator applies the initial state to submit.
func NewAggregator(submit *dom.Element, fields ...Validatable) *Aggregator {
	a := &Aggregator{submit: submit, fields: fields}
	a.Check()
	return a
}

// Check rescans the fields and enables submit only if every one is valid.
func (a *Aggregator) Check() bool {
	ok := true
	for _, f := range a.fields {
		if !f.Valid() {
			ok = false
			break
		}
	}

	if ok {
		a.submit.RemoveAttr("disabled")
	} else {
		a.submit.SetAttr("disabled", "disabled")
	}
	return ok
}

// Enabled reports whether the submit control is currently enabled.
func (a *Aggregator) Enabled() bool {
	return !a.submit.HasAttr("disabled")
}
