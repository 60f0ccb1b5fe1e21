package formvalidator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/formvalidator"
	"github.com/dmitrymomot/liveform/pkg/validator"
)

func TestRules_Evaluate(t *testing.T) {
	t.Parallel()

	rules := formvalidator.Rules{
		Required:      true,
		MinLength:     formvalidator.Int(3),
		MaxLength:     formvalidator.Int(10),
		FirstPattern:  formvalidator.MustPattern(`^[a-z]+$`),
		SecondPattern: formvalidator.MustPattern(`^[^x]+$`),
	}

	tests := []struct {
		name  string
		value string
		want  formvalidator.Violation
	}{
		{"empty", "", formvalidator.ViolationRequired},
		{"too long wins over pattern", "ABCDEFGHIJKL", formvalidator.ViolationMaxLength},
		{"too short", "ab", formvalidator.ViolationMinLength},
		{"first pattern", "ABCD", formvalidator.ViolationFirstPattern},
		{"second pattern", "abxd", formvalidator.ViolationSecondPattern},
		{"valid", "abcd", formvalidator.NoViolation},
		{"length counts characters", "ééééééééé", formvalidator.ViolationFirstPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Evaluate(tt.value))
		})
	}
}

func TestRules_LengthBounds(t *testing.T) {
	t.Parallel()

	rules := formvalidator.Rules{MinLength: formvalidator.Int(2), MaxLength: formvalidator.Int(4)}
	for n := 0; n <= 6; n++ {
		value := strings.Repeat("a", n)
		got := rules.Evaluate(value)
		if n < 2 || n > 4 {
			assert.NotEqual(t, formvalidator.NoViolation, got, "length %d", n)
		} else {
			assert.Equal(t, formvalidator.NoViolation, got, "length %d", n)
		}
	}

	t.Run("optional empty value still honours min length", func(t *testing.T) {
		assert.Equal(t, formvalidator.ViolationMinLength, rules.Evaluate(""))
	})
}

func TestRules_SecondPatternOnlyAfterFirst(t *testing.T) {
	t.Parallel()

	t.Run("failing first pattern never reports the second", func(t *testing.T) {
		rules := formvalidator.Rules{
			FirstPattern:  formvalidator.MustPattern(`^\d+$`),
			SecondPattern: formvalidator.MustPattern(`^never$`),
		}
		for _, v := range []string{"abc", "12a", ""} {
			assert.Equal(t, formvalidator.ViolationFirstPattern, rules.Evaluate(v), v)
		}
	})

	t.Run("second pattern alone is ignored", func(t *testing.T) {
		rules := formvalidator.Rules{SecondPattern: formvalidator.MustPattern(`^never$`)}
		assert.Equal(t, formvalidator.NoViolation, rules.Evaluate("anything"))
	})

	t.Run("unset patterns pass", func(t *testing.T) {
		assert.Equal(t, formvalidator.NoViolation, formvalidator.Rules{}.Evaluate(""))
	})
}

func TestRules_Check(t *testing.T) {
	t.Parallel()

	err := formvalidator.Rules{Required: true}.Check("username", "")
	require.Error(t, err)
	errs := validator.ExtractValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "username", errs[0].Field)
	assert.Equal(t, validator.CodeRequired, errs[0].Code)

	assert.NoError(t, formvalidator.Rules{Required: true}.Check("username", "jane"))
}

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	p, err := formvalidator.CompilePattern("")
	require.NoError(t, err)
	assert.False(t, p.IsSet())

	p, err = formvalidator.CompilePattern(`^a+$`)
	require.NoError(t, err)
	assert.True(t, p.IsSet())
	assert.Equal(t, `^a+$`, p.String())

	_, err = formvalidator.CompilePattern(`(`)
	assert.Error(t, err)
	assert.Panics(t, func() { formvalidator.MustPattern(`(`) })
}
