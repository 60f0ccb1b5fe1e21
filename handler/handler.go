package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/liveform/pkg/binder"
)

// HandlerFunc handles a request already bound into R.
type HandlerFunc[R any] func(ctx Context, req R) Response

// Response writes itself to the client. A returned error goes to the
// ErrorHandler, so a Response that failed must not have written anything.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind fills v from r. Binders return binder.ErrBinderNotApplicable for
// requests they do not handle.
type Bind func(r *http.Request, v any) error

type ErrorHandler func(ctx Context, err error)

type WrapOption[R any] func(*wrapConfig[R])

type wrapConfig[R any] struct {
	binders      []Bind
	errorHandler ErrorHandler
}

// WithBinders appends binders, which run in order.
func WithBinders[R any](binders ...Bind) WrapOption[R] {
	return func(c *wrapConfig[R]) { c.binders = append(c.binders, binders...) }
}

func WithErrorHandler[R any](h ErrorHandler) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// plainErrors answers with http.Error, using the HTTPError status when there
// is one.
func plainErrors(ctx Context, err error) {
	status, key := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		status, key = httpErr.Code, httpErr.Key
	}
	http.Error(ctx.ResponseWriter(), key, status)
}

// Wrap adapts h to net/http: it binds the request, calls h and renders the
// response, sending bind and render failures to the error handler.
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption[R]) http.HandlerFunc {
	cfg := &wrapConfig[R]{errorHandler: plainErrors}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrBinderNotApplicable) {
					continue
				}
				cfg.errorHandler(ctx, err)
				return
			}
		}

		resp := h(ctx, req)
		if resp == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
