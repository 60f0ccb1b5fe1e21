package signup

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/liveform/handler"
	"github.com/dmitrymomot/liveform/pkg/ajax"
	"github.com/dmitrymomot/liveform/pkg/cache"
	"github.com/dmitrymomot/liveform/pkg/clientip"
	"github.com/dmitrymomot/liveform/pkg/cookie"
	"github.com/dmitrymomot/liveform/pkg/csrf"
	"github.com/dmitrymomot/liveform/pkg/formvalidator"
	"github.com/dmitrymomot/liveform/pkg/logger"
	"github.com/dmitrymomot/liveform/pkg/ratelimiter"
	"github.com/dmitrymomot/liveform/pkg/uniqueness"
)

// Service serves the signup page. Every visitor gets a live form kept on the
// server; browser events are posted to it and the resulting DOM patches are
// streamed back over Server-Sent Events.
type Service struct {
	cfg          Config
	def          *formvalidator.Definition
	page         []byte
	store        uniqueness.Store
	accounts     AccountStore
	cookies      *cookie.Manager
	csrf         *csrf.Protect
	confirmer    formvalidator.Confirmer
	client       *http.Client
	forms        *cache.LRUCache[string, *formvalidator.Form]
	formOpts     []formvalidator.Option
	rates        ratelimiter.Store
	ownRates     *ratelimiter.MemoryStore
	lookups      *ratelimiter.Bucket
	events       *ratelimiter.Bucket
	logger       *slog.Logger
	errorHandler handler.ErrorHandler
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Log output is discarded otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithErrorHandler sets the handler rendering failed requests.
func WithErrorHandler(h handler.ErrorHandler) Option {
	return func(s *Service) { s.errorHandler = h }
}

// WithCSRF replaces the default anti-forgery protection.
func WithCSRF(p *csrf.Protect) Option {
	return func(s *Service) { s.csrf = p }
}

// WithDefinition replaces the embedded form definition.
func WithDefinition(d *formvalidator.Definition) Option {
	return func(s *Service) { s.def = d }
}

// WithPage replaces the embedded page markup. The page must contain the form
// and fields named by the definition.
func WithPage(html []byte) Option {
	return func(s *Service) { s.page = html }
}

// WithConfirmer replaces the confirmer used by live forms.
func WithConfirmer(c formvalidator.Confirmer) Option {
	return func(s *Service) { s.confirmer = c }
}

// WithHTTPClient sets the client used when Config.ConfirmURL is set.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// WithFormOptions appends options applied to every live form.
func WithFormOptions(opts ...formvalidator.Option) Option {
	return func(s *Service) { s.formOpts = append(s.formOpts, opts...) }
}

// WithRateLimitStore shares rate limit buckets through store. An in-process
// store is used otherwise.
func WithRateLimitStore(store ratelimiter.Store) Option {
	return func(s *Service) { s.rates = store }
}

// NewService creates the signup service. store answers uniqueness checks and
// accounts receives new accounts.
func NewService(cfg Config, store uniqueness.Store, accounts AccountStore, cookies *cookie.Manager, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	if cookies == nil {
		return nil, ErrMissingCookies
	}
	if accounts == nil {
		accounts = NewMemoryAccounts()
	}

	s := &Service{
		cfg:      cfg.withDefaults(),
		page:     defaultPage,
		store:    store,
		accounts: accounts,
		cookies:  cookies,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.logger = s.logger.With(logger.Component("signup"))
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.logger, handler.ErrorHandlerConfig{
			ErrorToast:  toastView,
			ToastTarget: "#" + toastContainerID,
		})
	}
	if s.csrf == nil {
		s.csrf = csrf.New(cookies, csrf.DefaultConfig(), csrf.WithLogger(s.logger))
	}
	if s.def == nil {
		def, err := formvalidator.LoadDefinition(bytes.NewReader(defaultDefinition))
		if err != nil {
			return nil, err
		}
		s.def = def
	}
	if s.confirmer == nil {
		c, err := s.newConfirmer()
		if err != nil {
			return nil, err
		}
		s.confirmer = c
	}

	if s.rates == nil {
		s.ownRates = ratelimiter.NewMemoryStore()
		s.rates = s.ownRates
	}
	var err error
	if s.lookups, err = ratelimiter.NewBucket(s.rates, s.cfg.LookupRate); err != nil {
		s.closeRates()
		return nil, fmt.Errorf("signup: lookup rate: %w", err)
	}
	if s.events, err = ratelimiter.NewBucket(s.rates, s.cfg.EventRate); err != nil {
		s.closeRates()
		return nil, fmt.Errorf("signup: event rate: %w", err)
	}

	s.forms = cache.NewLRUCache[string, *formvalidator.Form](s.cfg.MaxForms)
	s.forms.SetEvictCallback(func(visitor string, form *formvalidator.Form) {
		s.logger.Debug("live form released", logger.SessionID(visitor), logger.FormID(form.ID()))
		_ = form.Close()
	})

	return s, nil
}

// newConfirmer checks values against the store in process unless a confirm
// URL is configured, in which case the page endpoint is asked over HTTP.
func (s *Service) newConfirmer() (formvalidator.Confirmer, error) {
	if s.cfg.ConfirmURL == "" {
		return uniqueness.NewStoreConfirmer(s.store), nil
	}

	target, err := url.ParseRequestURI(s.cfg.ConfirmURL)
	if err != nil {
		return nil, fmt.Errorf("signup: confirm url: %w", err)
	}

	client := s.client
	if client == nil {
		client = &http.Client{Timeout: s.cfg.SubmitTimeout}
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		client.Jar = jar
	}

	// The endpoint sits behind the anti-forgery middleware, so the client
	// carries its own signed token.
	csrfCfg := s.csrf.Config()
	client.Jar.SetCookies(target, []*http.Cookie{{
		Name:  csrfCfg.CookieName,
		Value: s.cookies.Sign(uuid.NewString()),
		Path:  "/",
	}})

	return ajax.NewConfirmer(client, target.String(), ajax.WithCSRF(csrfCfg.CookieName, csrfCfg.HeaderName))
}

// Handle returns the signup router. Mount it at /signup to match the URLs used
// by the embedded page.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(s.csrf.Middleware)

	r.Get("/", handler.Wrap(s.showPage,
		handler.WithErrorHandler[struct{}](s.errorHandler),
	))
	r.With(
		s.rateLimit(s.lookups, "lookup:"),
		uniqueness.Middleware(s.store, uniqueness.WithLogger(s.logger)),
	).Post("/", handler.Wrap(s.submit,
		handler.WithBinders[SubmitRequest](submitBinder),
		handler.WithErrorHandler[SubmitRequest](s.errorHandler),
	))
	r.Get("/stream", handler.Wrap(s.stream,
		handler.WithErrorHandler[struct{}](s.errorHandler),
	))
	r.With(s.rateLimit(s.events, "event:")).Post("/events/{kind}/{target}", handler.Wrap(s.event,
		handler.WithBinders[EventRequest](eventPathBinder, eventSignalsBinder),
		handler.WithErrorHandler[EventRequest](s.errorHandler),
	))
	r.Get("/welcome", handler.Wrap(s.welcome))

	return r
}

// rateLimit keys limiter by client address. Install clientip middleware in
// front of the service when it runs behind a proxy.
func (s *Service) rateLimit(limiter ratelimiter.Limiter, prefix string) func(http.Handler) http.Handler {
	return ratelimiter.Middleware(limiter,
		func(r *http.Request) string {
			if ip := clientip.FromRequest(r); ip != "" {
				return prefix + ip
			}
			return ""
		},
		ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, r *http.Request, _ ratelimiter.Result) {
			s.logger.WarnContext(r.Context(), "rate limited",
				slog.String("bucket", prefix), slog.String("path", r.URL.Path))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
		ratelimiter.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			s.logger.ErrorContext(r.Context(), "rate limit store failed", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}),
	)
}

// Close releases every live form.
func (s *Service) Close() {
	s.forms.Clear()
	s.closeRates()
}

func (s *Service) closeRates() {
	if s.ownRates != nil {
		_ = s.ownRates.Close()
	}
}

// visitor returns the visitor id from the signed cookie.
func (s *Service) visitor(r *http.Request) (string, error) {
	id, err := s.cookies.GetSigned(r, s.cfg.VisitorCookie)
	if err != nil {
		return "", errors.Join(ErrNoVisitor, err)
	}
	return id, nil
}

// form returns the live form of the requesting visitor.
func (s *Service) form(r *http.Request) (*formvalidator.Form, string, error) {
	visitor, err := s.visitor(r)
	if err != nil {
		return nil, "", err
	}
	form, ok := s.forms.Get(visitor)
	if !ok {
		return nil, visitor, ErrFormExpired
	}
	return form, visitor, nil
}

// release closes and forgets the live form of visitor.
func (s *Service) release(visitor string) {
	s.forms.Remove(visitor)
}
