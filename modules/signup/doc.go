// Package signup serves a live-validated account signup page.
//
// Each visitor gets a server-side copy of the page bound to a form definition.
// The browser posts input, change and click events to the service, which runs
// the validators and streams the resulting DOM patches back over Server-Sent
// Events. Uniqueness of usernames and emails is confirmed against a
// uniqueness.Store, either in process or through the page's own confirmation
// endpoint. The final submission is validated again with the same rules before
// the account is created.
//
// Lookups, submits and events are rate limited per client address. Install
// clientip middleware in front of the router when it runs behind a proxy.
//
// Mount the router at /signup:
//
//	svc, err := signup.NewService(cfg, store, accounts, cookies,
//		signup.WithLogger(log),
//		signup.WithErrorHandler(errorHandler),
//	)
//	if err != nil {
//		return err
//	}
//	r.Mount("/signup", svc.Handle())
package signup
