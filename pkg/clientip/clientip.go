package clientip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

var ErrInvalidProxy = errors.New("clientip: invalid trusted proxy")

// Config lists the networks whose forwarding headers are believed.
type Config struct {
	TrustedProxies []string `env:"CLIENTIP_TRUSTED_PROXIES" envSeparator:","`
}

// Resolver finds the address of the client behind a request. Forwarding
// headers are only read when the direct peer is a trusted proxy; otherwise
// anyone could pick the address a rate limit is keyed on.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver accepts CIDR prefixes or single addresses.
func NewResolver(cfg Config) (*Resolver, error) {
	r := &Resolver{}
	for _, s := range cfg.TrustedProxies {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, s)
			}
			r.trusted = append(r.trusted, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, s)
		}
		r.trusted = append(r.trusted, p.Masked())
	}
	return r, nil
}

// IP returns the client address of r. Behind trusted proxies it prefers
// CF-Connecting-IP, then the right-most untrusted X-Forwarded-For hop, then
// X-Real-IP.
func (res *Resolver) IP(r *http.Request) string {
	peer, ok := parse(remoteHost(r.RemoteAddr))
	if !ok {
		return ""
	}
	if !res.isTrusted(peer) {
		return peer.String()
	}

	if addr, ok := parse(r.Header.Get("CF-Connecting-IP")); ok {
		return addr.String()
	}
	if hops := r.Header.Values("X-Forwarded-For"); len(hops) > 0 {
		list := strings.Split(strings.Join(hops, ","), ",")
		for i := len(list) - 1; i >= 0; i-- {
			addr, ok := parse(list[i])
			if !ok {
				break
			}
			if !res.isTrusted(addr) {
				return addr.String()
			}
		}
	}
	if addr, ok := parse(r.Header.Get("X-Real-IP")); ok {
		return addr.String()
	}
	return peer.String()
}

// Middleware stores the resolved address in the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), res.IP(r))))
	})
}

func (res *Resolver) isTrusted(addr netip.Addr) bool {
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

type ctxKey struct{}

func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKey{}).(string)
	return ip
}

// FromRequest returns the address stored by Middleware, or the direct peer
// when the middleware did not run.
func FromRequest(r *http.Request) string {
	if ip := FromContext(r.Context()); ip != "" {
		return ip
	}
	if addr, ok := parse(remoteHost(r.RemoteAddr)); ok {
		return addr.String()
	}
	return ""
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func parse(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}
