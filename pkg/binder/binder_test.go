package binder_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/binder"
)

type signupForm struct {
	Username string   `form:"username"`
	Email    string   `form:"email"`
	Age      *int     `form:"age"`
	Terms    bool     `form:"terms"`
	Tags     []string `form:"tags"`
	Internal string   `form:"-"`
}

func TestForm(t *testing.T) {
	t.Parallel()

	t.Run("urlencoded body", func(t *testing.T) {
		t.Parallel()
		body := url.Values{
			"username": {"bob"},
			"email":    {"bob@example.com"},
			"age":      {"42"},
			"terms":    {"on"},
			"tags":     {"a,b", "c"},
			"Internal": {"nope"},
		}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

		var got signupForm
		require.NoError(t, binder.Form()(r, &got))
		assert.Equal(t, "bob", got.Username)
		assert.Equal(t, "bob@example.com", got.Email)
		require.NotNil(t, got.Age)
		assert.Equal(t, 42, *got.Age)
		assert.True(t, got.Terms)
		assert.Equal(t, []string{"a,b", "c"}, got.Tags, "commas are kept")
		assert.Empty(t, got.Internal)
	})

	t.Run("multipart body", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("username", "alice"))
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		var got signupForm
		require.NoError(t, binder.Form()(r, &got))
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("query values are ignored", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/?username=mallory", strings.NewReader("email=a%40b.c"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var got signupForm
		require.NoError(t, binder.Form()(r, &got))
		assert.Empty(t, got.Username)
		assert.Equal(t, "a@b.c", got.Email)
	})

	t.Run("not applicable to GET", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/?username=bob", nil)
		var got signupForm
		assert.ErrorIs(t, binder.Form()(r, &got), binder.ErrBinderNotApplicable)
	})

	t.Run("content type errors", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		var got signupForm
		assert.ErrorIs(t, binder.Form()(r, &got), binder.ErrMissingContentType)

		r.Header.Set("Content-Type", "application/json")
		assert.ErrorIs(t, binder.Form()(r, &got), binder.ErrUnsupportedMediaType)
	})

	t.Run("bad value", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("age=old"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		var got signupForm
		assert.ErrorIs(t, binder.Form()(r, &got), binder.ErrInvalidForm)
	})
}

func TestJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}

	newRequest := func(body string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		return r
	}

	t.Run("decodes", func(t *testing.T) {
		t.Parallel()
		var got payload
		require.NoError(t, binder.JSON()(newRequest(`{"field":"email","value":"x"}`), &got))
		assert.Equal(t, payload{Field: "email", Value: "x"}, got)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		var got payload
		assert.ErrorIs(t, binder.JSON()(newRequest(`{"field":"email","extra":1}`), &got), binder.ErrInvalidJSON)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()
		var got payload
		assert.ErrorIs(t, binder.JSON()(newRequest(`{"field":"a"}{"field":"b"}`), &got), binder.ErrInvalidJSON)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()
		var got payload
		assert.ErrorIs(t, binder.JSON()(newRequest(``), &got), binder.ErrInvalidJSON)
	})

	t.Run("requires json content type", func(t *testing.T) {
		t.Parallel()
		r := newRequest(`{}`)
		r.Header.Set("Content-Type", "text/plain")
		var got payload
		assert.ErrorIs(t, binder.JSON()(r, &got), binder.ErrUnsupportedMediaType)
	})
}

func TestPath(t *testing.T) {
	t.Parallel()

	type eventRequest struct {
		Kind  string `path:"kind"`
		Index int    `path:"index"`
		Other string
	}
	params := map[string]string{"kind": "input", "index": "3"}
	extract := func(_ *http.Request, name string) string { return params[name] }

	r := httptest.NewRequest(http.MethodPost, "/events/input/3", nil)

	var got eventRequest
	require.NoError(t, binder.Path(extract)(r, &got))
	assert.Equal(t, eventRequest{Kind: "input", Index: 3}, got)

	none := func(*http.Request, string) string { return "" }
	assert.ErrorIs(t, binder.Path(none)(r, &got), binder.ErrBinderNotApplicable)
}

func TestSignals(t *testing.T) {
	t.Parallel()

	type signals struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}

	t.Run("post body", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"field":"username","value":"bob"}`))
		r.Header.Set("Content-Type", "application/json")

		var got signals
		require.NoError(t, binder.Signals()(r, &got))
		assert.Equal(t, signals{Field: "username", Value: "bob"}, got)
	})

	t.Run("get query", func(t *testing.T) {
		t.Parallel()
		q := url.Values{"datastar": {`{"field":"email","value":"a"}`}}
		r := httptest.NewRequest(http.MethodGet, "/?"+q.Encode(), nil)

		var got signals
		require.NoError(t, binder.Signals()(r, &got))
		assert.Equal(t, signals{Field: "email", Value: "a"}, got)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"field":`))
		var got signals
		assert.ErrorIs(t, binder.Signals()(r, &got), binder.ErrInvalidSignals)
	})
}
