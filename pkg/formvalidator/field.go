package formvalidator

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Listener is notified after every validation of a field with its new validity.
type Listener func(valid bool)

// HelpPopup is contextual help opened from the link inside an invalid-value
// message.
type HelpPopup interface {
	Toggle()
}

// FieldOption configures a FieldValidator.
type FieldOption func(*FieldValidator)

// WithRemoteCheck confirms locally valid values with the server.
func WithRemoteCheck(check RemoteCheck) FieldOption {
	return func(v *FieldValidator) { v.remote = &check }
}

// WithHelp links invalid-value messages to popup.
func WithHelp(popup HelpPopup) FieldOption {
	return func(v *FieldValidator) { v.help = popup }
}

type subscription struct {
	id int
	fn Listener
}

// FieldValidator owns the local rules and optional remote check of one field.
type FieldValidator struct {
	form       *Form
	bind       *Binding
	subject    Subject
	rules      Rules
	remote     *RemoteCheck
	help       HelpPopup
	helpLinkID string
	valid      atomic.Bool

	mu        sync.Mutex
	listeners []subscription
	nextID    int
}

// ID returns the field element id.
func (v *FieldValidator) ID() string { return v.bind.Field.ID() }

// Subject returns the display name of the field.
func (v *FieldValidator) Subject() Subject { return v.subject }

// Rules returns the local rule set.
func (v *FieldValidator) Rules() Rules { return v.rules }

// Binding returns the resolved element handles.
func (v *FieldValidator) Binding() *Binding { return v.bind }

// HelpLinkID returns the id of the help link rendered in invalid-value messages,
// or an empty string when the field has no help popup.
func (v *FieldValidator) HelpLinkID() string { return v.helpLinkID }

// Valid reports the current validity. A field with a remote check becomes valid
// only once the server answer arrives.
func (v *FieldValidator) Valid() bool { return v.valid.Load() }

// Subscribe registers fn to run after every validation of this field, including
// applied server answers. The returned function removes the subscription.
func (v *FieldValidator) Subscribe(fn Listener) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := v.nextID
	v.listeners = append(v.listeners, subscription{id: id, fn: fn})
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.listeners = slices.DeleteFunc(v.listeners, func(s subscription) bool { return s.id == id })
	}
}

// Validate re-evaluates the field against its current value.
func (v *FieldValidator) Validate() error {
	_, err := v.form.exec(func() error {
		v.validate()
		return nil
	})
	return err
}

func (v *FieldValidator) binding() *Binding { return v.bind }
func (v *FieldValidator) onInput()          { v.validate() }
func (v *FieldValidator) onChange()         { v.validate() }

func (v *FieldValidator) validate() {
	value := v.bind.Value()

	if violation := v.rules.Evaluate(value); violation != NoViolation {
		// A newer value supersedes any confirmation still on its way.
		if v.remote != nil {
			v.form.remote.Cancel(v.ID())
		}
		v.fail(v.message(violation))
		return
	}

	if v.remote != nil {
		v.form.remote.Schedule(v.ID(), value, v.applyConfirmation)
		v.notify()
		return
	}

	v.pass()
}

func (v *FieldValidator) message(violation Violation) string {
	if violation == ViolationRequired {
		return v.form.messages.Required(v.subject)
	}
	return v.form.messages.Invalid(v.subject, v.helpLinkID)
}

func (v *FieldValidator) applyConfirmation(res Confirmation) {
	if msg, ok := v.remote.Outcome(res); !ok {
		v.fail(msg)
		return
	}
	v.pass()
}

func (v *FieldValidator) fail(message string) {
	v.form.display.MarkInvalid(v.bind, message)
	v.valid.Store(false)
	v.notify()
}

func (v *FieldValidator) pass() {
	v.form.display.MarkValid(v.bind)
	v.valid.Store(true)
	v.notify()
}

func (v *FieldValidator) notify() {
	v.mu.Lock()
	listeners := slices.Clone(v.listeners)
	v.mu.Unlock()

	valid := v.valid.Load()
	for _, s := range listeners {
		s.fn(valid)
	}
}
