package uniqueness

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/liveform/pkg/ajax"
	"github.com/dmitrymomot/liveform/pkg/formvalidator"
	"github.com/dmitrymomot/liveform/pkg/logger"
)

type middlewareConfig struct {
	log *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithLogger sets the logger for store failures.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Middleware answers confirmation requests posted to the page location. A
// request is handled when it is an XHR POST carrying field_id; everything else
// falls through to next. The answer is {"value_in_use": bool}.
func Middleware(store Store, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !ajax.IsAjax(r) {
				next.ServeHTTP(w, r)
				return
			}
			field := r.PostFormValue(ajax.FieldIDParam)
			if field == "" {
				next.ServeHTTP(w, r)
				return
			}

			taken, err := store.Exists(r.Context(), field, r.PostFormValue(ajax.FieldValueParam))
			switch {
			case errors.Is(err, ErrUnknownField):
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			case err != nil:
				cfg.log.ErrorContext(r.Context(), "uniqueness lookup failed",
					logger.Component("uniqueness"),
					logger.FieldID(field),
					logger.Error(err),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Cache-Control", "no-store")
			_ = json.NewEncoder(w).Encode(formvalidator.Confirmation{ValueInUse: taken})
		})
	}
}
