// Package clientip resolves the address of the client behind an HTTP request.
//
// Forwarding headers (CF-Connecting-IP, X-Forwarded-For, X-Real-IP) are easy
// to forge, so a Resolver only reads them when the direct peer belongs to one
// of the configured trusted proxy networks:
//
//	res, err := clientip.NewResolver(clientip.Config{TrustedProxies: []string{"10.0.0.0/8"}})
//	if err != nil {
//		return err
//	}
//	r.Use(res.Middleware)
//
// Handlers read the address with FromRequest, which falls back to the direct
// peer when the middleware is not installed.
package clientip
