package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/application/services"
)

func TestHealthCheckService_Check(t *testing.T) {
	service := services.NewHealthCheckService(time.Minute)

	var dbCalls, redisCalls atomic.Int32
	service.Register("postgres", func(ctx context.Context) error {
		dbCalls.Add(1)
		return nil
	})
	service.Register("redis", func(ctx context.Context) error {
		redisCalls.Add(1)
		return errors.New("connection refused")
	})

	report := service.Check(context.Background())
	assert.Equal(t, services.StatusUnhealthy, report.Status)
	require.Len(t, report.Dependencies, 2)
	assert.Equal(t, "postgres", report.Dependencies[0].Name)
	assert.Equal(t, services.StatusHealthy, report.Dependencies[0].Status)
	assert.Equal(t, "connection refused", report.Dependencies[1].Error)

	// cached within the TTL
	service.Check(context.Background())
	assert.Equal(t, int32(1), dbCalls.Load())
	assert.Equal(t, int32(1), redisCalls.Load())

	service.Invalidate()
	service.Check(context.Background())
	assert.Equal(t, int32(2), dbCalls.Load())
}

func TestHealthCheckService_Expiry(t *testing.T) {
	service := services.NewHealthCheckService(20 * time.Millisecond)

	var calls atomic.Int32
	service.Register("typesense", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	report := service.Check(context.Background())
	assert.Equal(t, services.StatusHealthy, report.Status)

	assert.Eventually(t, func() bool {
		service.Check(context.Background())
		return calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestHealthCheckService_NoDependencies(t *testing.T) {
	report := services.NewHealthCheckService(time.Minute).Check(context.Background())
	assert.Equal(t, services.StatusHealthy, report.Status)
	assert.Empty(t, report.Dependencies)
}
