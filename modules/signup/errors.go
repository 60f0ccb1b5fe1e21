package signup

import "errors"

var (
	ErrAccountExists  = errors.New("signup: account already exists")
	ErrNoVisitor      = errors.New("signup: no visitor session")
	ErrFormExpired    = errors.New("signup: live form expired")
	ErrUnknownEvent   = errors.New("signup: unknown event kind")
	ErrMissingStore   = errors.New("signup: uniqueness store is required")
	ErrMissingCookies = errors.New("signup: cookie manager is required")
)
