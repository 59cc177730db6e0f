package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/travelstreams/config"
	"github.com/c360/travelstreams/metric"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusStopped, "stopped"},
		{StatusStarting, "starting"},
		{StatusRunning, "running"},
		{StatusStopping, "stopping"},
		{Status(42), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.status.String())
	}
}

func TestNewBaseService(t *testing.T) {
	cfg := config.Default()
	svc := NewBaseService("test-service", cfg)

	assert.Equal(t, "test-service", svc.Name())
	assert.Equal(t, StatusStopped, svc.Status())
	assert.False(t, svc.IsHealthy())
	assert.Same(t, cfg, svc.Config())
	assert.NotNil(t, svc.Logger())
}

func TestBaseService_StartStop(t *testing.T) {
	svc := NewBaseService("lifecycle", config.Default(),
		WithHealthInterval(0), // no background checks in this test
	)

	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	assert.Equal(t, StatusRunning, svc.Status())

	// Starting again is a no-op
	require.NoError(t, svc.Start(ctx))
	assert.Equal(t, StatusRunning, svc.Status())

	require.NoError(t, svc.Stop(time.Second))
	assert.Equal(t, StatusStopped, svc.Status())
	assert.False(t, svc.IsHealthy())

	// Stopping again is a no-op
	require.NoError(t, svc.Stop(time.Second))
	assert.Equal(t, StatusStopped, svc.Status())
}

func TestBaseService_HealthCheck(t *testing.T) {
	var failing atomic.Bool

	svc := NewBaseService("checked", config.Default(),
		WithHealthCheck(func() error {
			if failing.Load() {
				return errors.New("backend down")
			}
			return nil
		}),
		WithHealthInterval(0),
	)

	svc.performHealthCheck()
	assert.True(t, svc.IsHealthy())

	failing.Store(true)
	svc.performHealthCheck()
	assert.False(t, svc.IsHealthy())

	info := svc.GetStatus()
	assert.Equal(t, int64(2), info.HealthChecks)
	assert.Equal(t, int64(1), info.FailedHealthChecks)
}

func TestBaseService_OnHealthChange(t *testing.T) {
	changes := make(chan bool, 4)
	svc := NewBaseService("notified", config.Default(),
		OnHealthChange(func(healthy bool) { changes <- healthy }),
		WithHealthInterval(0),
	)

	svc.performHealthCheck()
	select {
	case healthy := <-changes:
		assert.True(t, healthy)
	case <-time.After(time.Second):
		t.Fatal("expected health change notification")
	}

	// Unchanged health does not notify again
	svc.performHealthCheck()
	select {
	case <-changes:
		t.Fatal("unexpected notification for unchanged health")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBaseService_Health(t *testing.T) {
	svc := NewBaseService("reporting", config.Default(), WithHealthInterval(0))

	status := svc.Health()
	assert.True(t, status.IsUnhealthy())

	require.NoError(t, svc.Start(context.Background()))
	svc.performHealthCheck()

	status = svc.Health()
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "reporting", status.Service)

	require.NoError(t, svc.Stop(time.Second))
	assert.True(t, svc.Health().IsUnhealthy())
}

func TestBaseService_ContextCancel(t *testing.T) {
	svc := NewBaseService("cancelable", config.Default(), WithHealthInterval(0))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Start(ctx))
	require.Equal(t, StatusRunning, svc.Status())

	cancel()

	assert.Eventually(t, func() bool {
		return svc.Status() == StatusStopped
	}, time.Second, 10*time.Millisecond)
}

func TestBaseService_RecordCall(t *testing.T) {
	svc := NewBaseService("counting", config.Default(), WithHealthInterval(0))

	svc.RecordCall()
	svc.RecordCall()

	info := svc.GetStatus()
	assert.Equal(t, int64(2), info.CallsHandled)
	assert.False(t, info.LastActivity.IsZero())
}

func TestBaseService_Uptime(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	logger := slog.Default()

	svc := NewBaseService("timed", config.Default(),
		WithMetrics(registry),
		WithLogger(logger),
		WithHealthInterval(0),
	)

	assert.Zero(t, svc.GetStatus().Uptime)

	require.NoError(t, svc.Start(context.Background()))
	time.Sleep(10 * time.Millisecond)
	assert.Greater(t, svc.GetStatus().Uptime, time.Duration(0))

	require.NoError(t, svc.Stop(time.Second))
	assert.Zero(t, svc.GetStatus().Uptime)
}
