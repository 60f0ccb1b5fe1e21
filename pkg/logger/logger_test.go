package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/environment"
	"github.com/dmitrymomot/liveform/pkg/logger"
)

type ctxKey struct{}

func visitorExtractor(ctx context.Context) (slog.Attr, bool) {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return logger.SessionID(v), true
	}
	return slog.Attr{}, false
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json at info by default", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))

		log.Debug("hidden")
		assert.Zero(t, buf.Len())

		log.Info("account created", logger.FormID("signup"))
		rec := decode(t, &buf)
		assert.Equal(t, "account created", rec["msg"])
		assert.Equal(t, "signup", rec["form_id"])
	})

	t.Run("context extractors", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextExtractors(visitorExtractor, nil),
		).With(logger.Component("signup"))

		ctx := context.WithValue(context.Background(), ctxKey{}, "visitor-1")
		log.InfoContext(ctx, "live form created")

		rec := decode(t, &buf)
		assert.Equal(t, "visitor-1", rec["session_id"])
		assert.Equal(t, "signup", rec["component"])
	})

	t.Run("extractor without value", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithContextExtractors(visitorExtractor))

		log.InfoContext(context.Background(), "stream opened")
		assert.NotContains(t, decode(t, &buf), "session_id")
	})

	t.Run("level by name", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevelName("warn"))
		log.Info("hidden")
		assert.Zero(t, buf.Len())

		log = logger.New(logger.WithOutput(&buf), logger.WithLevelName("nonsense"))
		log.Info("shown")
		assert.NotZero(t, buf.Len())
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("development is text at debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithEnvironment(environment.Development, "liveform"),
		)
		log.Debug("remote check", logger.FieldID("username"), logger.Sequence(3))

		out := buf.String()
		assert.Contains(t, out, "msg=\"remote check\"")
		assert.Contains(t, out, "service=liveform")
		assert.Contains(t, out, "env=development")
		assert.Contains(t, out, "field_id=username")
		assert.Contains(t, out, "seq=3")
	})

	t.Run("production is json at info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithEnvironment(environment.Production, "liveform"),
		)
		log.Debug("hidden")
		assert.Zero(t, buf.Len())

		log.Warn("confirmation failed", logger.Error(errors.New("timeout")), logger.Duration(2*time.Second))
		rec := decode(t, &buf)
		assert.Equal(t, "production", rec["env"])
		assert.Equal(t, "timeout", rec["error"])
	})
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	attr := logger.Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
}
