package signup

import (
	"time"

	"github.com/dmitrymomot/liveform/pkg/ratelimiter"
)

// Config controls the signup page.
type Config struct {
	// VisitorCookie names the signed cookie identifying a visitor's live form.
	VisitorCookie string `env:"SIGNUP_VISITOR_COOKIE" envDefault:"liveform_visitor"`
	// MaxForms caps how many live forms are kept; the least recently used is closed.
	MaxForms int `env:"SIGNUP_MAX_FORMS" envDefault:"1024"`
	// ConfirmURL, when set, makes remote checks go over HTTP to that page
	// instead of querying the uniqueness store in process.
	ConfirmURL string `env:"SIGNUP_CONFIRM_URL"`
	// WelcomePath is where a successful signup redirects to.
	WelcomePath string `env:"SIGNUP_WELCOME_PATH" envDefault:"/signup/welcome"`
	// BcryptCost is the password hashing cost.
	BcryptCost int `env:"SIGNUP_BCRYPT_COST" envDefault:"10"`
	// SubmitTimeout bounds server-side confirmation during the final submit.
	SubmitTimeout time.Duration `env:"SIGNUP_SUBMIT_TIMEOUT" envDefault:"5s"`
	// LookupRate limits uniqueness lookups and submits per client address.
	LookupRate ratelimiter.Config `envPrefix:"SIGNUP_LOOKUP_RATE_"`
	// EventRate limits posted browser events per client address.
	EventRate ratelimiter.Config `envPrefix:"SIGNUP_EVENT_RATE_"`
}

// DefaultConfig returns the defaults used when values are left zero.
func DefaultConfig() Config {
	return Config{
		VisitorCookie: "liveform_visitor",
		MaxForms:      1024,
		WelcomePath:   "/signup/welcome",
		BcryptCost:    10,
		SubmitTimeout: 5 * time.Second,
		LookupRate:    ratelimiter.Config{Capacity: 30, RefillRate: 1, RefillInterval: 2 * time.Second},
		EventRate:     ratelimiter.Config{Capacity: 120, RefillRate: 10, RefillInterval: time.Second},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.VisitorCookie == "" {
		c.VisitorCookie = d.VisitorCookie
	}
	if c.MaxForms <= 0 {
		c.MaxForms = d.MaxForms
	}
	if c.WelcomePath == "" {
		c.WelcomePath = d.WelcomePath
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = d.BcryptCost
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = d.SubmitTimeout
	}
	c.LookupRate = rateWithDefaults(c.LookupRate, d.LookupRate)
	c.EventRate = rateWithDefaults(c.EventRate, d.EventRate)
	return c
}

func rateWithDefaults(c, d ratelimiter.Config) ratelimiter.Config {
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.RefillRate <= 0 {
		c.RefillRate = d.RefillRate
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = d.RefillInterval
	}
	return c
}
