// Package cookie writes and reads HTTP cookies with shared defaults and
// HMAC-SHA256 signatures.
//
// A Manager is created with one or more secrets of at least 32 bytes. The first
// secret signs; every secret verifies, so secrets can be rotated without
// invalidating live cookies.
//
//	man, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")})
//	if err != nil {
//		return err
//	}
//	_ = man.SetSigned(w, "visitor", id, cookie.WithMaxAge(3600))
//	id, err := man.GetSigned(r, "visitor")
//
// Config loads the secrets and defaults from the environment, see NewFromConfig.
//
// Errors are sentinels such as ErrCookieNotFound and ErrInvalidSignature.
package cookie
