package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const minSecretLength = 32

var (
	ErrNoSecret         = errors.New("cookie: no secret")
	ErrSecretTooShort   = errors.New("cookie: secret too short")
	ErrInvalidSignature = errors.New("cookie: invalid signature")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: invalid format")
	ErrInvalidName      = errors.New("cookie: invalid name")
)

var b64 = base64.RawURLEncoding

// Manager writes and reads cookies with shared defaults. Signed values have the
// form payload.tag, tagged with HMAC-SHA256 under the first key; every key
// verifies, so old secrets can be kept around during rotation.
type Manager struct {
	keys     [][]byte
	defaults Options
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	m := &Manager{defaults: applyOptions(Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, opts)}

	for i, s := range secrets {
		switch {
		case s == "":
			continue
		case len(s) < minSecretLength:
			return nil, fmt.Errorf("%w: secret #%d must be at least %d bytes", ErrSecretTooShort, i, minSecretLength)
		}
		m.keys = append(m.keys, []byte(s))
	}
	if len(m.keys) == 0 {
		return nil, ErrNoSecret
	}
	return m, nil
}

func (o Options) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	if name == "" {
		return ErrInvalidName
	}
	http.SetCookie(w, applyOptions(m.defaults, opts).cookie(name, value))
	return nil
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrCookieNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie using the manager's path and domain.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	c := m.defaults.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// Sign encodes value the way SetSigned stores it, without writing a cookie.
func (m *Manager) Sign(value string) string {
	payload := b64.EncodeToString([]byte(value))
	return payload + "." + b64.EncodeToString(tag(m.keys[0], payload))
}

func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	return m.Set(w, name, m.Sign(value), opts...)
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Verify(raw)
}

// Verify checks a value produced by Sign and returns the original value.
func (m *Manager) Verify(signed string) (string, error) {
	payload, encodedTag, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	value, err := b64.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidFormat
	}
	got, err := b64.DecodeString(encodedTag)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, key := range m.keys {
		if hmac.Equal(got, tag(key, payload)) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

func tag(key []byte, payload string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(payload))
	return h.Sum(nil)
}
