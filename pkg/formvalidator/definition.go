package formvalidator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/liveform/pkg/dom"
	"github.com/dmitrymomot/liveform/pkg/modal"
	"github.com/dmitrymomot/liveform/pkg/validator"
)

// Definition describes a whole validated form.
//
//	form: signup
//	submit: signup-submit
//	language: en
//	fields:
//	  - id: email
//	    name: email address
//	    required: true
//	    max_length: 254
//	    pattern: '^[^@\s]+@[^@\s]+$'
//	    remote: {mode: exists, exists_message: Already registered.}
//	  - id: email2
//	    name: email confirmation
//	    confirms: email
type Definition struct {
	Form     string            `yaml:"form"`
	Submit   string            `yaml:"submit"`
	Language string            `yaml:"language"`
	Fields   []FieldDefinition `yaml:"fields"`
}

// FieldDefinition describes one field. Fields with Confirms set are confirmation
// fields and ignore every rule option.
type FieldDefinition struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Gender        string            `yaml:"gender"`
	Required      bool              `yaml:"required"`
	MinLength     *int              `yaml:"min_length"`
	MaxLength     *int              `yaml:"max_length"`
	Pattern       string            `yaml:"pattern"`
	SecondPattern string            `yaml:"second_pattern"`
	CaseSensitive bool              `yaml:"case_sensitive"`
	Help          string            `yaml:"help"`
	Remote        *RemoteDefinition `yaml:"remote"`
	Confirms      string            `yaml:"confirms"`

	rules Rules
}

// RemoteDefinition configures the server check of a field.
type RemoteDefinition struct {
	Mode             string `yaml:"mode"`
	ExistsMessage    string `yaml:"exists_message"`
	NotExistsMessage string `yaml:"not_exists_message"`
}

const frenchPopupInfo = "(Cliquez n'importe où pour fermer la fenêtre d'aide.)"

// LoadDefinition decodes and checks a YAML definition. Patterns are compiled once
// here.
func LoadDefinition(r io.Reader) (*Definition, error) {
	var d Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Join(ErrInvalidDefinition, err)
	}
	if err := d.prepare(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Messages returns the message strategy for the definition language.
func (d *Definition) Messages() Messages {
	return MessagesFor(d.Language)
}

// Field returns the definition of fieldID.
func (d *Definition) Field(fieldID string) (FieldDefinition, bool) {
	for _, fd := range d.Fields {
		if fd.ID == fieldID {
			return fd, true
		}
	}
	return FieldDefinition{}, false
}

// Rules returns the compiled rule set.
func (fd FieldDefinition) Rules() Rules { return fd.rules }

// Subject returns the display name with its gender.
func (fd FieldDefinition) Subject() Subject {
	s := Subject{Name: fd.Name}
	if strings.EqualFold(fd.Gender, "feminine") || strings.EqualFold(fd.Gender, "f") {
		s.Gender = Feminine
	}
	return s
}

// RemoteCheck returns the remote configuration, if any.
func (fd FieldDefinition) RemoteCheck() (RemoteCheck, bool) {
	if fd.Remote == nil {
		return RemoteCheck{}, false
	}
	return RemoteCheck{
		Mode:             Mode(fd.Remote.Mode),
		ExistsMessage:    fd.Remote.ExistsMessage,
		NotExistsMessage: fd.Remote.NotExistsMessage,
	}, true
}

func (d *Definition) prepare() error {
	if d.Form == "" {
		return fmt.Errorf("%w: form id is required", ErrInvalidDefinition)
	}

	seen := make(map[string]bool, len(d.Fields))
	for i := range d.Fields {
		fd := &d.Fields[i]
		if fd.ID == "" {
			return fmt.Errorf("%w: field %d has no id", ErrInvalidDefinition, i)
		}
		if seen[fd.ID] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidDefinition, ErrDuplicateField, fd.ID)
		}
		seen[fd.ID] = true

		if fd.Name == "" {
			fd.Name = fd.ID
		}

		if fd.Confirms != "" {
			primary, ok := d.Field(fd.Confirms)
			if !ok || primary.Confirms != "" || !seen[fd.Confirms] {
				return fmt.Errorf("%w: %q confirms unknown field %q", ErrInvalidDefinition, fd.ID, fd.Confirms)
			}
			continue
		}

		first, err := CompilePattern(fd.Pattern)
		if err != nil {
			return fmt.Errorf("%w: field %q pattern: %w", ErrInvalidDefinition, fd.ID, err)
		}
		second, err := CompilePattern(fd.SecondPattern)
		if err != nil {
			return fmt.Errorf("%w: field %q second_pattern: %w", ErrInvalidDefinition, fd.ID, err)
		}
		fd.rules = Rules{
			Required:      fd.Required,
			MinLength:     fd.MinLength,
			MaxLength:     fd.MaxLength,
			FirstPattern:  first,
			SecondPattern: second,
			CaseSensitive: fd.CaseSensitive,
		}

		if fd.Remote != nil {
			if _, err := ParseMode(fd.Remote.Mode); err != nil {
				return fmt.Errorf("%w: field %q: %w", ErrInvalidDefinition, fd.ID, err)
			}
		}
	}
	return nil
}

// Build binds the definition to doc. Help content becomes a modal popup, and the
// submit control, when named, is attached to every field. The popup container
// is part of the form snapshot. Options passed here override the definition
// language.
func (d *Definition) Build(doc *dom.Document, opts ...Option) (*Form, error) {
	opts = append([]Option{WithMessages(d.Messages()), WithSnapshotIDs(modal.ContainerID)}, opts...)
	form, err := NewForm(doc, d.Form, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.bind(form, doc); err != nil {
		_ = form.Close()
		return nil, err
	}
	return form, nil
}

func (d *Definition) bind(form *Form, doc *dom.Document) error {
	var popupOpts []modal.Option
	if _, ok := d.Messages().(FrenchMessages); ok {
		popupOpts = append(popupOpts, modal.WithInfo(frenchPopupInfo))
	}

	ids := make([]string, 0, len(d.Fields))
	hasHelp := false
	for _, fd := range d.Fields {
		ids = append(ids, fd.ID)

		if fd.Confirms != "" {
			if _, err := form.Confirmation(fd.ID, fd.Subject(), fd.Confirms); err != nil {
				return err
			}
			continue
		}

		var fieldOpts []FieldOption
		if check, ok := fd.RemoteCheck(); ok {
			fieldOpts = append(fieldOpts, WithRemoteCheck(check))
		}
		if fd.Help != "" {
			popup, err := modal.New(doc, fd.ID, fd.Help, popupOpts...)
			if err != nil {
				return err
			}
			fieldOpts = append(fieldOpts, WithHelp(popup))
			hasHelp = true
		}
		if _, err := form.Field(fd.ID, fd.Subject(), fd.rules, fieldOpts...); err != nil {
			return err
		}
	}

	if hasHelp {
		form.OnClick(modal.ContainerID, func() { modal.Dismiss(doc) })
	}

	if d.Submit != "" {
		if _, err := form.Attach(d.Submit, ids...); err != nil {
			return err
		}
	}

	return nil
}

// ValidateValues applies the same rules to submitted values on the server.
// Remote checks are confirmed immediately through confirmer when it is not nil.
// It returns validator.ValidationErrors listing the first failure of each field,
// or a transport error from confirmer.
func (d *Definition) ValidateValues(ctx context.Context, values map[string]string, confirmer Confirmer) error {
	msgs := d.Messages()
	fold := cases.Lower(language.Und)

	var errs validator.ValidationErrors
	for _, fd := range d.Fields {
		value := values[fd.ID]

		if fd.Confirms != "" {
			primary, _ := d.Field(fd.Confirms)
			got, want := value, values[primary.ID]
			if !primary.rules.CaseSensitive {
				got, want = fold.String(got), fold.String(want)
			}
			switch {
			case got == "":
				errs.Add(fieldError(fd.ID, "confirmation_required", msgs.ConfirmationRequired(primary.Subject())))
			case got != want:
				errs.Add(fieldError(fd.ID, "mismatch", msgs.Mismatch(fd.Subject(), primary.Subject())))
			}
			continue
		}

		switch violation := fd.rules.Evaluate(value); violation {
		case NoViolation:
		case ViolationRequired:
			errs.Add(fieldError(fd.ID, violation.String(), msgs.Required(fd.Subject())))
			continue
		default:
			errs.Add(fieldError(fd.ID, violation.String(), msgs.Invalid(fd.Subject(), "")))
			continue
		}

		check, ok := fd.RemoteCheck()
		if !ok || confirmer == nil {
			continue
		}
		res, err := confirmer.Confirm(ctx, fd.ID, value)
		if err != nil {
			return fmt.Errorf("confirm %q: %w", fd.ID, err)
		}
		if msg, ok := check.Outcome(res); !ok {
			errs.Add(fieldError(fd.ID, "remote", msg))
		}
	}

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func fieldError(field, rule, message string) validator.ValidationError {
	return validator.ValidationError{
		Field:   field,
		Code:    rule,
		Message: message,
	}
}
