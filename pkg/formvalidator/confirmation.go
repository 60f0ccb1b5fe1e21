package formvalidator

import (
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConfirmationFieldValidator checks that a field repeats the value of a primary
// field, such as a password confirmation. It revalidates on its own input and
// after every validation of the primary.
type ConfirmationFieldValidator struct {
	form        *Form
	bind        *Binding
	subject     Subject
	primary     *FieldValidator
	fold        cases.Caser
	valid       atomic.Bool
	unsubscribe func()
}

func newConfirmationFieldValidator(f *Form, b *Binding, subject Subject, primary *FieldValidator) *ConfirmationFieldValidator {
	c := &ConfirmationFieldValidator{
		form:    f,
		bind:    b,
		subject: subject,
		primary: primary,
		fold:    cases.Lower(language.Und),
	}
	c.unsubscribe = primary.Subscribe(func(bool) { c.validate() })
	return c
}

// ID returns the field element id.
func (c *ConfirmationFieldValidator) ID() string { return c.bind.Field.ID() }

// Primary returns the validator of the confirmed field.
func (c *ConfirmationFieldValidator) Primary() *FieldValidator { return c.primary }

// Binding returns the resolved element handles.
func (c *ConfirmationFieldValidator) Binding() *Binding { return c.bind }

// Valid reports the current validity.
func (c *ConfirmationFieldValidator) Valid() bool { return c.valid.Load() }

// Validate re-evaluates the field against the primary's current value.
func (c *ConfirmationFieldValidator) Validate() error {
	_, err := c.form.exec(func() error {
		c.validate()
		return nil
	})
	return err
}

// Unlink stops revalidating when the primary changes.
func (c *ConfirmationFieldValidator) Unlink() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *ConfirmationFieldValidator) binding() *Binding { return c.bind }
func (c *ConfirmationFieldValidator) onInput()          { c.validate() }

// Change events only record the value; the browser already fired input.
func (c *ConfirmationFieldValidator) onChange() {}

func (c *ConfirmationFieldValidator) validate() {
	value, target := c.bind.Value(), c.primary.Binding().Value()
	if !c.primary.Rules().CaseSensitive {
		value, target = c.fold.String(value), c.fold.String(target)
	}

	switch {
	case value == "":
		c.form.display.MarkInvalid(c.bind, c.form.messages.ConfirmationRequired(c.primary.Subject()))
		c.valid.Store(false)
	case value != target:
		c.form.display.MarkInvalid(c.bind, c.form.messages.Mismatch(c.subject, c.primary.Subject()))
		c.valid.Store(false)
	default:
		c.form.display.MarkValid(c.bind)
		c.valid.Store(true)
	}
}
