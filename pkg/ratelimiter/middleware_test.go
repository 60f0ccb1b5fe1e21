package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/ratelimiter"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimiter.Result, error) {
	return ratelimiter.Result{}, ratelimiter.ErrStoreUnavailable
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	byAddr := func(r *http.Request) string { return r.RemoteAddr }

	serve := func(h http.Handler, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("answers 429 once the bucket is empty", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})
		h := ratelimiter.Middleware(b, byAddr)(ok)

		for i := range 2 {
			rec := serve(h, "198.51.100.1")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, strconv.Itoa(1-i), rec.Header().Get("X-RateLimit-Remaining"))
			assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
			assert.Empty(t, rec.Header().Get("Retry-After"))
		}

		rec := serve(h, "198.51.100.1")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.Positive(t, retry)

		assert.Equal(t, http.StatusOK, serve(h, "198.51.100.2").Code)
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
		h := ratelimiter.Middleware(b, func(*http.Request) string { return "" })(ok)
		for range 3 {
			rec := serve(h, "198.51.100.1")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("custom limited handler", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
		h := ratelimiter.Middleware(b, byAddr, ratelimiter.WithLimitedHandler(
			func(w http.ResponseWriter, _ *http.Request, res ratelimiter.Result) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte("slow down " + strconv.Itoa(res.Limit)))
			},
		))(ok)
		serve(h, "a")
		rec := serve(h, "a")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "slow down 1", rec.Body.String())
	})

	t.Run("store errors", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, http.StatusInternalServerError, serve(ratelimiter.Middleware(failingLimiter{}, byAddr)(ok), "a").Code)

		var got error
		h := ratelimiter.Middleware(failingLimiter{}, byAddr, ratelimiter.WithErrorHandler(
			func(w http.ResponseWriter, _ *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		))(ok)
		assert.Equal(t, http.StatusServiceUnavailable, serve(h, "a").Code)
		assert.True(t, errors.Is(got, ratelimiter.ErrStoreUnavailable))
	})
}
