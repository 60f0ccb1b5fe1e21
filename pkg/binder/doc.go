// Package binder fills request structs from HTTP requests for handler.Wrap.
//
// Binders run in order; one that does not apply to a request returns
// ErrBinderNotApplicable and is skipped:
//
//	handler.Wrap(submit, handler.WithBinders[SubmitRequest](
//		binder.Path(chi.URLParam), // path:"..." tags
//		binder.Form(),             // form:"..." tags, skipped for GET
//	))
//
// Available binders: Form, JSON, Path and Signals (DataStar signal store).
// Failures wrap ErrInvalidForm, ErrInvalidJSON, ErrInvalidPath or
// ErrInvalidSignals, and content type problems wrap ErrMissingContentType or
// ErrUnsupportedMediaType.
package binder
