// Package handler turns typed functions into http.HandlerFuncs.
//
// A handler receives a Context and a request struct filled by binders, and
// returns a Response:
//
//	r.Post("/", handler.Wrap(s.submit,
//		handler.WithBinders[SubmitRequest](binder.Form()),
//		handler.WithErrorHandler[SubmitRequest](errs),
//	))
//
// Responses that fail, including handler.Error, are passed to the route's
// ErrorHandler. NewErrorHandler builds one that renders an error page, or a
// toast patched into the page when the request came from DataStar.
//
// SSE keeps a DataStar event stream open and hands the handler a
// StreamContext for pushing element patches as they happen.
package handler
