package binder

import (
	"net/http"
	"reflect"
)

// Path binds `path:"name"` fields through extractor, typically chi.URLParam.
//
// Example:
//
//	type EventRequest struct {
//		Kind string `path:"kind"`
//	}
//
//	binder.Path(chi.URLParam)
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return ErrInvalidPath
		}

		rt := rv.Elem().Type()
		values := make(map[string][]string)
		for i := range rt.NumField() {
			name, ok := tagName(rt.Field(i), "path")
			if !ok {
				continue
			}
			if value := extractor(r, name); value != "" {
				values[name] = []string{value}
			}
		}
		if len(values) == 0 {
			return ErrBinderNotApplicable
		}
		return bindValues(v, "path", values, ErrInvalidPath)
	}
}
