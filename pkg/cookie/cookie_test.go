package cookie_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/cookie"
)

const (
	secret    = "this-is-a-very-long-secret-key-32-chars-long"
	oldSecret = "this-is-old-very-long-secret-key-32-chars-ok"
)

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{name: "no secrets", secrets: []string{}, wantErr: cookie.ErrNoSecret},
		{name: "empty secrets", secrets: []string{"", ""}, wantErr: cookie.ErrNoSecret},
		{name: "secret too short", secrets: []string{"short"}, wantErr: cookie.ErrSecretTooShort},
		{name: "valid secret", secrets: []string{secret}},
		{name: "rotation", secrets: []string{secret, oldSecret}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cookie.New(tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

// roundTrip copies the cookies written to w into a new request.
func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestManager_Plain(t *testing.T) {
	t.Parallel()
	m, err := cookie.New([]string{secret}, cookie.WithSecure(true))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "theme", "dark", cookie.WithHTTPOnly(false), cookie.WithMaxAge(60)))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/", cookies[0].Path)
	assert.True(t, cookies[0].Secure)
	assert.False(t, cookies[0].HttpOnly)
	assert.Equal(t, 60, cookies[0].MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	v, err := m.Get(roundTrip(w), "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "theme")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	assert.ErrorIs(t, m.Set(w, "", "x"), cookie.ErrInvalidName)

	w = httptest.NewRecorder()
	m.Delete(w, "theme")
	assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()
	m, err := cookie.New([]string{secret})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "visitor", "abc-123"))

		v, err := m.GetSigned(roundTrip(w), "visitor")
		require.NoError(t, err)
		assert.Equal(t, "abc-123", v)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		signed := m.Sign("abc-123")
		_, sig, _ := strings.Cut(signed, ".")
		forged := m.Sign("other")
		forgedValue, _, _ := strings.Cut(forged, ".")

		_, err := m.Verify(forgedValue + "." + sig)
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()
		_, err := m.Verify("no-separator")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)

		_, err = m.Verify("!!!.sig")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("rotation accepts old secret", func(t *testing.T) {
		t.Parallel()
		old, err := cookie.New([]string{oldSecret})
		require.NoError(t, err)
		rotated, err := cookie.New([]string{secret, oldSecret})
		require.NoError(t, err)

		v, err := rotated.Verify(old.Sign("kept"))
		require.NoError(t, err)
		assert.Equal(t, "kept", v)

		_, err = m.Verify(old.Sign("kept"))
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := cookie.DefaultConfig()
	cfg.Secrets = " " + secret + " , " + oldSecret
	cfg.Path = "/app"

	m, err := cookie.NewFromConfig(cfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "a", "b"))
	assert.Equal(t, "/app", w.Result().Cookies()[0].Path)

	_, err = cookie.NewFromConfig(cookie.DefaultConfig())
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
