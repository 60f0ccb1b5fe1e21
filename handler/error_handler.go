package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/liveform/pkg/logger"
	"github.com/dmitrymomot/liveform/pkg/requestid"
)

type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
}

type ErrorToastParams struct {
	Message   string
	Type      string // "warning" for 4xx, "error" for 5xx
	RequestID string
}

// ErrorHandlerConfig supplies the views. Without ErrorPage, regular requests
// get a plain text error. Without ErrorToast, DataStar requests get nothing
// beyond the log record.
type ErrorHandlerConfig struct {
	ErrorPage   func(ErrorPageParams) templ.Component
	ErrorToast  func(ErrorToastParams) templ.Component
	ToastTarget string // defaults to "#toast-container"
	ToastMode   datastar.ElementPatchMode
}

// NewErrorHandler logs the error and answers with an error page, or with a
// toast patched into the page for DataStar requests.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toast-container"
	}
	if cfg.ToastMode == "" {
		cfg.ToastMode = datastar.ElementPatchModePrepend
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		status, message := classify(err)
		reqID := requestid.FromContext(ctx)

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(ctx, level, "request failed",
			logger.Component("error_handler"),
			logger.Error(err),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if IsDataStar(r) {
			if cfg.ErrorToast == nil {
				return
			}
			kind := "error"
			if status < http.StatusInternalServerError {
				kind = "warning"
			}
			toast := cfg.ErrorToast(ErrorToastParams{Message: message, Type: kind, RequestID: reqID})
			if err := Templ(toast, WithTarget(cfg.ToastTarget), WithPatchMode(cfg.ToastMode)).Render(ctx.ResponseWriter(), r); err != nil {
				log.ErrorContext(ctx, "render error toast", logger.Error(err))
			}
			return
		}

		if cfg.ErrorPage == nil {
			http.Error(ctx.ResponseWriter(), message, status)
			return
		}
		w := ctx.ResponseWriter()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		page := cfg.ErrorPage(ErrorPageParams{Error: message, StatusCode: status, RequestID: reqID, RetryURL: r.URL.Path})
		if err := page.Render(ctx, w); err != nil {
			log.ErrorContext(ctx, "render error page", logger.Error(err))
		}
	}
}

// classify picks the status and the message shown to the visitor. Messages of
// unknown errors stay in the log.
func classify(err error) (int, string) {
	var verr ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, http.StatusText(httpErr.Code)
	}
	return http.StatusInternalServerError, "Something went wrong. Please try again."
}
