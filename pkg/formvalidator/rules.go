package formvalidator

import (
	"regexp"

	"github.com/dmitrymomot/liveform/pkg/validator"
)

// Pattern is an optional regular expression. The zero value means "no pattern"
// and always passes.
type Pattern struct {
	re *regexp.Regexp
}

// CompilePattern compiles expr. An empty expression yields the unset pattern.
func CompilePattern(expr string) (Pattern, error) {
	if expr == "" {
		return Pattern{}, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{re: re}, nil
}

// MustPattern is like CompilePattern but panics on an invalid expression.
func MustPattern(expr string) Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// IsSet reports whether the pattern carries an expression.
func (p Pattern) IsSet() bool { return p.re != nil }

// String returns the source expression.
func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Violation identifies the first local rule a value fails.
type Violation int

const (
	NoViolation Violation = iota
	ViolationRequired
	ViolationMaxLength
	ViolationMinLength
	ViolationFirstPattern
	ViolationSecondPattern
)

func (v Violation) String() string {
	switch v {
	case NoViolation:
		return "none"
	case ViolationRequired:
		return "required"
	case ViolationMaxLength:
		return "max_length"
	case ViolationMinLength:
		return "min_length"
	case ViolationFirstPattern:
		return "first_pattern"
	case ViolationSecondPattern:
		return "second_pattern"
	default:
		return "unknown"
	}
}

const codeSecondPattern = "second_pattern"

var violationsByCode = map[string]Violation{
	validator.CodeRequired:  ViolationRequired,
	validator.CodeMaxLength: ViolationMaxLength,
	validator.CodeMinLength: ViolationMinLength,
	validator.CodePattern:   ViolationFirstPattern,
	codeSecondPattern:       ViolationSecondPattern,
}

// Rules is the immutable local rule set of a field. Lengths are counted in
// characters, not bytes.
type Rules struct {
	Required      bool
	MinLength     *int
	MaxLength     *int
	FirstPattern  Pattern
	SecondPattern Pattern
	CaseSensitive bool
}

// Check evaluates the rules in order required, max length, min length, first
// pattern, second pattern, and stops at the first failure. The returned error is
// a validator.ValidationErrors with exactly one entry.
func (r Rules) Check(field, value string) error {
	rules := []validator.Rule{
		validator.When(r.Required, validator.Required(field, value)),
		validator.When(r.MaxLength != nil, validator.MaxLen(field, value, deref(r.MaxLength))),
		validator.When(r.MinLength != nil, validator.MinLen(field, value, deref(r.MinLength))),
	}
	if r.FirstPattern.IsSet() {
		rules = append(rules, validator.Matches(field, value, r.FirstPattern.re))
		// The second pattern only runs once a first pattern exists and has passed.
		if r.SecondPattern.IsSet() {
			second := validator.Matches(field, value, r.SecondPattern.re)
			second.Error.Code = codeSecondPattern
			rules = append(rules, second)
		}
	}
	return validator.First(rules...)
}

// Evaluate returns the first violated rule, or NoViolation.
func (r Rules) Evaluate(value string) Violation {
	errs := validator.ExtractValidationErrors(r.Check("", value))
	if len(errs) == 0 {
		return NoViolation
	}
	return violationsByCode[errs[0].Code]
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Int returns a pointer to n, for populating optional length bounds.
func Int(n int) *int { return &n }
