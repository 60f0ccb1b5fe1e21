package formvalidator

import "errors"

var (
	// ErrFormNotFound is returned when the form id does not resolve to a form element.
	ErrFormNotFound = errors.New("formvalidator: form not found")

	// ErrFieldNotFound is returned when the field id does not resolve inside the form.
	ErrFieldNotFound = errors.New("formvalidator: field not found")

	// ErrContainerNotFound is returned when the field is not wrapped in a container
	// element inside the form.
	ErrContainerNotFound = errors.New("formvalidator: field container not found")

	// ErrSubmitNotFound is returned when the submit control cannot be located.
	ErrSubmitNotFound = errors.New("formvalidator: submit control not found")

	// ErrDuplicateField is returned when a field id is registered twice.
	ErrDuplicateField = errors.New("formvalidator: field already registered")

	// ErrUnknownField is returned for events targeting an unregistered field.
	ErrUnknownField = errors.New("formvalidator: field is not registered")

	// ErrUnknownTarget is returned for clicks on elements without a bound action.
	ErrUnknownTarget = errors.New("formvalidator: click target has no action")

	// ErrNoConfirmer is returned when a remote check is configured without a Confirmer.
	ErrNoConfirmer = errors.New("formvalidator: remote check requires a confirmer")

	// ErrInvalidMode is returned for remote check modes other than exists/not-exists.
	ErrInvalidMode = errors.New("formvalidator: invalid remote check mode")

	// ErrMalformedResponse is returned by confirmers when the confirmation payload
	// does not carry the expected boolean.
	ErrMalformedResponse = errors.New("formvalidator: malformed confirmation response")

	// ErrInvalidDefinition is returned when a form definition cannot be built.
	ErrInvalidDefinition = errors.New("formvalidator: invalid form definition")

	// ErrFormClosed is returned for events delivered after Close.
	ErrFormClosed = errors.New("formvalidator: form is closed")
)
