package uniqueness

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// Store reports whether a value of a tracked field is already taken.
type Store interface {
	Exists(ctx context.Context, field, value string) (bool, error)
}

// Adder is implemented by stores that can record a newly taken value.
type Adder interface {
	Add(ctx context.Context, field, value string) error
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, field, value string) (bool, error)

func (f StoreFunc) Exists(ctx context.Context, field, value string) (bool, error) {
	return f(ctx, field, value)
}

// Normalize folds case and trims surrounding spaces, so "Bob@Example.com " and
// "bob@example.com" collide. A Caser keeps state, so each call gets its own.
func Normalize(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}
