package validator

import (
	"errors"
	"strings"
)

// Codes of the built-in rules.
const (
	CodeRequired  = "required"
	CodeMinLength = "min_length"
	CodeMaxLength = "max_length"
	CodePattern   = "pattern"
)

// ValidationError is one failed rule on one field.
type ValidationError struct {
	Field   string
	Code    string
	Message string
	Params  map[string]any
}

// ValidationErrors is returned by Apply and First when any rule fails.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, e := range ve {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Field)
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (ve *ValidationErrors) Add(err ValidationError) { *ve = append(*ve, err) }

func (ve ValidationErrors) IsEmpty() bool { return len(ve) == 0 }

// Has reports whether field failed at least one rule.
func (ve ValidationErrors) Has(field string) bool {
	return len(ve.Get(field)) > 0
}

// Get returns the messages recorded for field, in rule order.
func (ve ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, e := range ve {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Rule pairs a check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs every rule and collects all failures.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if !r.Check() {
			errs.Add(r.Error)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// First stops at the first failing rule; later rules are not evaluated.
func First(rules ...Rule) error {
	for _, r := range rules {
		if !r.Check() {
			return ValidationErrors{r.Error}
		}
	}
	return nil
}

// When returns rule if cond holds, otherwise a rule that always passes.
func When(cond bool, rule Rule) Rule {
	if cond {
		return rule
	}
	return Rule{Check: func() bool { return true }}
}

// ExtractValidationErrors unwraps err, returning nil if it carries none.
func ExtractValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}

func IsValidationError(err error) bool {
	var errs ValidationErrors
	return errors.As(err, &errs)
}
