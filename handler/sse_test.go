package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/handler"
)

func TestSSE(t *testing.T) {
	t.Parallel()

	t.Run("streams patches", func(t *testing.T) {
		t.Parallel()

		resp := handler.SSE(func(stream handler.StreamContext) error {
			if err := stream.SendElements(`<ul id="username-errorlist"><li>Please provide a valid username.</li></ul>`); err != nil {
				return err
			}
			if err := stream.SendComponent(htmlComponent(`<button id="signup-submit">Sign up</button>`)); err != nil {
				return err
			}
			return stream.SendSignals(map[string]any{"canSubmit": false})
		})

		rec := render(t, resp, datastarRequest(http.MethodGet, "/signup/stream"))
		body := rec.Body.String()
		assert.Contains(t, body, `id="username-errorlist"`)
		assert.Contains(t, body, `id="signup-submit"`)
		assert.Contains(t, body, "event: datastar-patch-signals")
		assert.Contains(t, body, `"canSubmit":false`)
	})

	t.Run("stream context ends with the request", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		r := datastarRequest(http.MethodGet, "/signup/stream").WithContext(ctx)
		resp := handler.SSE(func(stream handler.StreamContext) error {
			cancel()
			<-stream.Done()
			return stream.Err()
		})
		err := resp.Render(httptest.NewRecorder(), r)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects plain requests", func(t *testing.T) {
		t.Parallel()

		err := handler.SSE(func(handler.StreamContext) error { return nil }).
			Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/signup/stream", nil))
		require.ErrorIs(t, err, handler.ErrNotDataStar)
	})
}
