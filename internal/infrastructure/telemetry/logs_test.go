package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newDisabledLogsProvider(t *testing.T) *LoggerProvider {
	t.Helper()
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	return provider
}

func TestLoggerProviderDisabled(t *testing.T) {
	ctx := context.Background()
	provider := newDisabledLogsProvider(t)

	assert.False(t, provider.IsEnabled())
	assert.Nil(t, provider.GetLoggerProvider())

	// lifecycle calls on the inert shell are no-ops, never errors
	assert.NoError(t, provider.ForceFlush(ctx))
	assert.NoError(t, provider.Shutdown(ctx))
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestLoggerProviderEnabledWithoutCollector(t *testing.T) {
	ctx := context.Background()

	// the exporter buffers until a collector shows up, so construction
	// succeeds against a dead endpoint
	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "pos-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, provider.IsEnabled())
	assert.NotNil(t, provider.GetLoggerProvider())
	assert.Equal(t, "pos-backend", provider.GetConfig().ServiceName)

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewZapOTELCoreDisabled(t *testing.T) {
	tests := []struct {
		name     string
		provider *LoggerProvider
	}{
		{"nil provider", nil},
		{"disabled provider", newDisabledLogsProvider(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := NewZapOTELCore(ZapBridgeConfig{
				ServiceName:    "pos-backend",
				LoggerProvider: tt.provider,
				Level:          zapcore.InfoLevel,
			})
			require.NotNil(t, core)
			assert.False(t, core.Enabled(zapcore.ErrorLevel))
		})
	}
}

func TestNewZapOTELCoreLevels(t *testing.T) {
	ctx := context.Background()
	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "pos-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	defer provider.Shutdown(ctx)

	t.Run("debug level passes everything through", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "pos-backend",
			LoggerProvider: provider,
			Level:          zapcore.DebugLevel,
		})
		assert.True(t, core.Enabled(zapcore.DebugLevel))
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("warn level wraps with a filter", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "pos-backend",
			LoggerProvider: provider,
			Level:          zapcore.WarnLevel,
		})
		_, filtered := core.(*levelFilterCore)
		assert.True(t, filtered)
		assert.False(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))
	})
}

func TestBridgedLoggerWritesBothCores(t *testing.T) {
	consoleCore, consoleLogs := observer.New(zapcore.InfoLevel)
	collectorCore, collectorLogs := observer.New(zapcore.InfoLevel)

	logger := NewBridgedLogger(consoleCore, collectorCore)

	logger.Info("order completed",
		zap.String("order_number", "POS-2026-00042"),
		zap.String("table_number", "7"),
	)
	logger.Debug("ignored below info")

	require.Equal(t, 1, consoleLogs.Len())
	require.Equal(t, 1, collectorLogs.Len())

	entry := consoleLogs.All()[0]
	assert.Equal(t, "order completed", entry.Message)
	assert.Contains(t, entry.Context, zap.String("order_number", "POS-2026-00042"))
}

func TestLevelFilterCore(t *testing.T) {
	inner, observed := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	logger := zap.New(filtered)
	logger.Debug("stock scan")
	logger.Info("order opened")
	logger.Warn("stock below minimum")
	logger.Error("payment gateway unreachable")

	logs := observed.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "stock below minimum", logs[0].Message)
	assert.Equal(t, "payment gateway unreachable", logs[1].Message)
}

func TestLevelFilterCoreWith(t *testing.T) {
	inner, observed := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	// With must keep filtering and carry the bound fields
	child := filtered.With([]zapcore.Field{zap.String("station", "grill")})
	childFiltered, ok := child.(*levelFilterCore)
	require.True(t, ok)
	assert.Equal(t, zapcore.WarnLevel, childFiltered.minLevel)

	zap.New(child).Warn("pool drained")

	logs := observed.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Context, zap.String("station", "grill"))
}
