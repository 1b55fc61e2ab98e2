package telemetry_test

import (
	"sync"
	"testing"

	"github.com/resto/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfilerDisabled(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled: false,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.False(t, p.IsEnabled())
	assert.False(t, p.GetConfig().Enabled)

	// Stop on the no-op profiler succeeds, repeatedly.
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfilerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  telemetry.ProfilerConfig
	}{
		{
			name: "missing server address",
			cfg: telemetry.ProfilerConfig{
				Enabled:         true,
				ApplicationName: "pos-backend",
			},
		},
		{
			name: "missing application name",
			cfg: telemetry.ProfilerConfig{
				Enabled:       true,
				ServerAddress: "http://pyroscope:4040",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := telemetry.NewProfiler(tt.cfg, zaptest.NewLogger(t))
			assert.Error(t, err)
			assert.Nil(t, p)
		})
	}
}

func TestNewProfilerStartsAgainstLocalServer(t *testing.T) {
	if testing.Short() {
		t.Skip("requires a pyroscope server")
	}

	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           true,
		ServerAddress:     "http://localhost:4040",
		ApplicationName:   "pos-backend",
		ProfileCPU:        true,
		ProfileGoroutines: true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.True(t, p.IsEnabled())
	assert.NoError(t, p.Stop())

	// A second Stop is a no-op once the profiler flushed.
	assert.NoError(t, p.Stop())
}

func TestProfilerStopConcurrent(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled: false,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Stop())
		}()
	}
	wg.Wait()
}

func TestProfilerConfigCopy(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         false,
		ApplicationName: "pos-backend",
		ProfileCPU:      true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	cfg := p.GetConfig()
	cfg.ApplicationName = "mutated"
	assert.Equal(t, "pos-backend", p.GetConfig().ApplicationName)
}
