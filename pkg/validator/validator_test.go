package validator_test

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/validator"
)

func TestRules(t *testing.T) {
	t.Parallel()

	digits := regexp.MustCompile(`^\d+$`)

	tests := []struct {
		name string
		rule validator.Rule
		ok   bool
	}{
		{"required empty", validator.Required("f", ""), false},
		{"required whitespace", validator.Required("f", " "), true},
		{"min len runes", validator.MinLen("f", "éé", 2), true},
		{"min len short", validator.MinLen("f", "a", 2), false},
		{"max len runes", validator.MaxLen("f", "ééé", 3), true},
		{"max len long", validator.MaxLen("f", "abcd", 3), false},
		{"matches", validator.Matches("f", "123", digits), true},
		{"no match", validator.Matches("f", "12a", digits), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, tt.rule.Check())
			assert.Equal(t, "f", tt.rule.Error.Field)
			assert.NotEmpty(t, tt.rule.Error.Code)
		})
	}
}

func TestFirst(t *testing.T) {
	t.Parallel()

	t.Run("stops at first failure", func(t *testing.T) {
		t.Parallel()
		evaluated := false
		later := validator.Rule{Check: func() bool { evaluated = true; return false }}

		err := validator.First(validator.Required("name", ""), later)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, validator.CodeRequired, errs[0].Code)
		assert.False(t, evaluated)
	})

	t.Run("passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.First(validator.Required("name", "x"), validator.MaxLen("name", "x", 1)))
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	err := validator.Apply(
		validator.Required("a", ""),
		validator.MinLen("b", "x", 2),
		validator.MaxLen("b", "x", 5),
	)
	errs := validator.ExtractValidationErrors(err)
	require.Len(t, errs, 2)
	assert.True(t, errs.Has("a"))
	assert.Equal(t, []string{"must be at least 2 characters long"}, errs.Get("b"))
	assert.False(t, errs.Has("c"))
	assert.Equal(t, "validation failed: a: field is required; b: must be at least 2 characters long", err.Error())
}

func TestWhen(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.When(false, validator.Required("f", "")).Check())
	assert.False(t, validator.When(true, validator.Required("f", "")).Check())
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("submit: %w", validator.ValidationErrors{{Field: "f", Message: "bad"}})
	assert.True(t, validator.IsValidationError(wrapped))
	assert.Len(t, validator.ExtractValidationErrors(wrapped), 1)

	assert.False(t, validator.IsValidationError(errors.New("plain")))
	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Equal(t, "validation failed", validator.ValidationErrors{}.Error())
}
