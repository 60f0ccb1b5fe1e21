// Package environment parses APP_ENV and carries the result through request
// contexts, so handlers can tell production from development.
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	r.Use(environment.Middleware(env))
package environment
