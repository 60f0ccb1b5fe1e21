package binder

import (
	"fmt"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

// Signals binds the DataStar signal store sent with a request: the datastar
// query parameter for GET, the JSON body otherwise. Fields use json tags.
func Signals() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if err := datastar.ReadSignals(r, v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignals, err)
		}
		return nil
	}
}
