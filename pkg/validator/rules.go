package validator

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Required fails on the empty string. Whitespace counts as content.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return value != "" },
		Error: ValidationError{Field: field, Code: CodeRequired, Message: "field is required"},
	}
}

// MinLen counts characters, not bytes.
func MinLen(field, value string, n int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= n },
		Error: ValidationError{
			Field:   field,
			Code:    CodeMinLength,
			Message: fmt.Sprintf("must be at least %d characters long", n),
			Params:  map[string]any{"min": n},
		},
	}
}

// MaxLen counts characters, not bytes.
func MaxLen(field, value string, n int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= n },
		Error: ValidationError{
			Field:   field,
			Code:    CodeMaxLength,
			Message: fmt.Sprintf("must be at most %d characters long", n),
			Params:  map[string]any{"max": n},
		},
	}
}

// Matches is unanchored; put anchors in the expression.
func Matches(field, value string, re *regexp.Regexp) Rule {
	return Rule{
		Check: func() bool { return re.MatchString(value) },
		Error: ValidationError{
			Field:   field,
			Code:    CodePattern,
			Message: "has an invalid format",
			Params:  map[string]any{"pattern": re.String()},
		},
	}
}
