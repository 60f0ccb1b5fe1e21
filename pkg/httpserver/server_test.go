package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/httpserver"
)

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	t.Run("serves until the context ends", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		srv := httpserver.New(httpserver.Config{ShutdownTimeout: time.Second})
		done := make(chan error, 1)
		go func() {
			done <- srv.Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "signup")
			}))
		}()

		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		assert.Equal(t, "signup", string(body))

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("shutdown ends open streams", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		opened := make(chan struct{})
		ctx, cancel := context.WithCancel(context.Background())
		srv := httpserver.New(httpserver.Config{ShutdownTimeout: 5 * time.Second})
		done := make(chan error, 1)
		go func() {
			done <- srv.Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				w.WriteHeader(http.StatusOK)
				w.(http.Flusher).Flush()
				close(opened)
				<-r.Context().Done()
			}))
		}()

		go func() {
			resp, err := http.Get("http://" + ln.Addr().String() + "/signup/stream")
			if err == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
			}
		}()
		<-opened

		start := time.Now()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
			assert.Less(t, time.Since(start), 2*time.Second)
		case <-time.After(4 * time.Second):
			t.Fatal("open stream held the shutdown")
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		srv := httpserver.New(httpserver.Config{Addr: ln.Addr().String()})
		err = srv.Run(context.Background(), http.NotFoundHandler())
		assert.ErrorIs(t, err, httpserver.ErrStart)
	})
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	serve := func(h http.Handler) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rec
	}
	log := slog.New(slog.DiscardHandler)
	ok := func(context.Context) error { return nil }

	rec := serve(httpserver.HealthCheckHandler(log))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	rec = serve(httpserver.HealthCheckHandler(log, ok))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())
}

func TestHealthCheckHandler_NotReady(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	rec := httptest.NewRecorder()
	httpserver.HealthCheckHandler(log,
		func(context.Context) error { return nil },
		func(context.Context) error { return errors.New("redis: connection refused") },
	).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_READY")
}
