// Package csrf implements double-submit cookie protection.
//
// Safe requests receive a signed token in a cookie readable by page scripts.
// Unsafe requests must echo the cookie value in a header or a form field.
package csrf

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/liveform/pkg/cookie"
	"github.com/dmitrymomot/liveform/pkg/logger"
)

var (
	ErrMissingToken = errors.New("csrf: missing token")
	ErrInvalidToken = errors.New("csrf: invalid token")
)

// Config names the cookie, header and form field carrying the token.
type Config struct {
	CookieName string `env:"CSRF_COOKIE_NAME" envDefault:"csrftoken"`
	HeaderName string `env:"CSRF_HEADER" envDefault:"X-CSRFToken"`
	FieldName  string `env:"CSRF_FIELD" envDefault:"csrfmiddlewaretoken"`
	MaxAge     int    `env:"CSRF_MAX_AGE" envDefault:"31449600"`
}

// DefaultConfig returns the default names.
func DefaultConfig() Config {
	return Config{
		CookieName: "csrftoken",
		HeaderName: "X-CSRFToken",
		FieldName:  "csrfmiddlewaretoken",
		MaxAge:     31449600,
	}
}

type tokenKey struct{}

// Protect issues and checks tokens.
type Protect struct {
	cookies *cookie.Manager
	cfg     Config
	logger  *slog.Logger
	onError http.HandlerFunc
}

// Option configures Protect.
type Option func(*Protect)

// WithLogger sets the logger for rejected requests.
func WithLogger(l *slog.Logger) Option {
	return func(p *Protect) { p.logger = l }
}

// WithErrorHandler replaces the plain 403 response.
func WithErrorHandler(h http.HandlerFunc) Option {
	return func(p *Protect) { p.onError = h }
}

// New creates a Protect signing tokens with cookies. Empty config names fall back
// to the defaults.
func New(cookies *cookie.Manager, cfg Config, opts ...Option) *Protect {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.FieldName == "" {
		cfg.FieldName = def.FieldName
	}

	p := &Protect{
		cookies: cookies,
		cfg:     cfg,
		logger:  slog.New(slog.DiscardHandler),
		onError: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective configuration.
func (p *Protect) Config() Config { return p.cfg }

// Token returns the request's token, issuing a new cookie when the request has
// no valid one. The returned value is what clients must echo back.
func (p *Protect) Token(w http.ResponseWriter, r *http.Request) (string, error) {
	if token, ok := r.Context().Value(tokenKey{}).(string); ok {
		return token, nil
	}
	if raw, err := p.current(r); err == nil {
		return raw, nil
	}

	token := p.cookies.Sign(uuid.NewString())
	if err := p.cookies.Set(w, p.cfg.CookieName, token,
		cookie.WithHTTPOnly(false),
		cookie.WithMaxAge(p.cfg.MaxAge),
	); err != nil {
		return "", err
	}
	return token, nil
}

// TokenFromContext returns the token stored by Middleware.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Middleware ensures every response carries a token and rejects unsafe requests
// whose submitted token does not match the cookie.
func (p *Protect) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !safeMethod(r.Method) {
			if err := p.check(r); err != nil {
				p.logger.WarnContext(r.Context(), "csrf check failed",
					logger.Error(err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				p.onError(w, r)
				return
			}
		}

		token, err := p.Token(w, r)
		if err != nil {
			p.logger.ErrorContext(r.Context(), "issuing csrf token failed", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey{}, token)))
	})
}

func (p *Protect) check(r *http.Request) error {
	raw, err := p.current(r)
	if err != nil {
		return err
	}

	submitted := r.Header.Get(p.cfg.HeaderName)
	if submitted == "" {
		submitted = r.PostFormValue(p.cfg.FieldName)
	}
	if submitted == "" {
		return ErrMissingToken
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(raw)) != 1 {
		return ErrInvalidToken
	}
	return nil
}

// current returns the raw cookie value after checking its signature.
func (p *Protect) current(r *http.Request) (string, error) {
	if _, err := p.cookies.GetSigned(r, p.cfg.CookieName); err != nil {
		if errors.Is(err, cookie.ErrCookieNotFound) {
			return "", ErrMissingToken
		}
		return "", errors.Join(ErrInvalidToken, err)
	}
	return p.cookies.Get(r, p.cfg.CookieName)
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
