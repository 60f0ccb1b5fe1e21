package binder

import (
	"fmt"
	"mime"
	"net/http"
)

// DefaultMaxMemory caps the in-memory part of multipart forms.
const DefaultMaxMemory = 10 << 20 // 10 MB

// Form binds application/x-www-form-urlencoded and multipart/form-data bodies
// using `form:"name"` tags. Requests without a body (GET, HEAD, DELETE) are
// not applicable, so Form can sit next to a query or path binder on a route
// serving both the page and its submission.
//
// Example:
//
//	type SubmitRequest struct {
//		Username string `form:"username"`
//		Email    string `form:"email"`
//		Terms    bool   `form:"terms"`
//		Internal string `form:"-"`
//	}
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
			return ErrBinderNotApplicable
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/x-www-form-urlencoded or multipart/form-data", ErrMissingContentType)
		}

		media, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
		}
		switch media {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			return bindValues(v, "form", r.PostForm, ErrInvalidForm)

		case "multipart/form-data":
			if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			return bindValues(v, "form", r.MultipartForm.Value, ErrInvalidForm)

		default:
			return fmt.Errorf("%w: got %s, expected form data", ErrUnsupportedMediaType, media)
		}
	}
}
