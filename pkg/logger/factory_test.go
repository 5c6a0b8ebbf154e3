package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/logger"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults to JSON at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))
		log.Debug("dropped")
		log.Info("kept")

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "kept", entry["msg"])
	})

	t.Run("text formatter", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithTextFormatter())
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("last formatter option wins", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithTextFormatter(),
			logger.WithJSONFormatter(),
		)
		log.Info("hello")
		entry := decodeEntry(t, &buf)
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("static attrs on every record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("component", "dispatcher")),
		)
		log.Info("msg")
		entry := decodeEntry(t, &buf)
		assert.Equal(t, "dispatcher", entry["component"])
	})

	t.Run("level option", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Zero(t, buf.Len())
		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("context extractors annotate records", func(t *testing.T) {
		t.Parallel()

		type ctxKey struct{}
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				if v, ok := ctx.Value(ctxKey{}).(string); ok {
					return slog.String("trace", v), true
				}
				return slog.Attr{}, false
			}),
		)

		log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "abc"), "msg")
		entry := decodeEntry(t, &buf)
		assert.Equal(t, "abc", entry["trace"])
	})

	t.Run("context value option", func(t *testing.T) {
		t.Parallel()

		type ctxKey struct{}
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", ctxKey{}),
		)

		log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "req-1"), "msg")
		entry := decodeEntry(t, &buf)
		assert.Equal(t, "req-1", entry["request_id"])
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { logger.WithFormat("xml") })
	})
}

func TestEnvironmentPresets(t *testing.T) {
	t.Parallel()

	t.Run("development is text at debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithEnvironment("development", "assetgrid"), logger.WithOutput(&buf))
		log.Debug("msg")
		out := buf.String()
		assert.Contains(t, out, "DEBUG")
		assert.Contains(t, out, "service=assetgrid")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production is JSON at info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithEnvironment("production", "assetgrid"), logger.WithOutput(&buf))
		log.Debug("dropped")
		assert.Zero(t, buf.Len())

		log.Info("msg")
		entry := decodeEntry(t, &buf)
		assert.Equal(t, "assetgrid", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("short names map to presets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithEnvironment("stage", "assetgrid"), logger.WithOutput(&buf))
		log.Info("msg")
		entry := decodeEntry(t, &buf)
		assert.Equal(t, "staging", entry["env"])
	})

	t.Run("unknown environment falls back to development", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithEnvironment("qa", "assetgrid"), logger.WithOutput(&buf))
		log.Debug("msg")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("empty service name leaves defaults untouched", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithProduction(""), logger.WithOutput(&buf))
		log.Info("msg")
		entry := decodeEntry(t, &buf)
		_, hasService := entry["service"]
		assert.False(t, hasService)
	})
}

func TestSetAsDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger.SetAsDefault(logger.New(logger.WithOutput(&buf)))
	slog.Info("default")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "default", entry["msg"])
}
