package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestTenantID(t *testing.T) {
	attr := logger.TenantID("t-123")
	require.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, "t-123", attr.Value.Any())

	empty := logger.TenantID(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestWebhookID(t *testing.T) {
	attr := logger.WebhookID("wh-1")
	require.Equal(t, "webhook_id", attr.Key)
	assert.Equal(t, "wh-1", attr.Value.Any())
}

func TestDeliveryID(t *testing.T) {
	attr := logger.DeliveryID("d-1")
	require.Equal(t, "delivery_id", attr.Key)
	assert.Equal(t, "d-1", attr.Value.Any())
}

func TestRequestID(t *testing.T) {
	attr := logger.RequestID("abc")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.Any())
}

func TestEventType(t *testing.T) {
	attr := logger.EventType("asset.created")
	require.Equal(t, "event_type", attr.Key)
	assert.Equal(t, "asset.created", attr.Value.Any())
}
