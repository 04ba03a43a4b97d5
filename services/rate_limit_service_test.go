package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectHit(mock redismock.ClientMock, key string, count int64, window time.Duration) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(count)
	mock.ExpectExpire(key, window).SetVal(true)
	mock.ExpectTxPipelineExec()
}

func TestRateLimitService_CheckLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	svc := NewRateLimitService(rdb)
	ctx := context.Background()

	expectHit(mock, "ratelimit:pay:10.0.0.1", 3, time.Minute)
	allowed, count, retry, err := svc.CheckLimit(ctx, "pay:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(3), count)
	assert.Zero(t, retry)

	expectHit(mock, "ratelimit:pay:10.0.0.1", 4, time.Minute)
	mock.ExpectTTL("ratelimit:pay:10.0.0.1").SetVal(42 * time.Second)
	allowed, count, retry, err = svc.CheckLimit(ctx, "pay:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(4), count)
	assert.Equal(t, 42*time.Second, retry)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitService_CheckLimit_TTLFallback(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	svc := NewRateLimitService(rdb)

	expectHit(mock, "ratelimit:k", 2, time.Minute)
	mock.ExpectTTL("ratelimit:k").SetErr(errors.New("timeout"))

	allowed, _, retry, err := svc.CheckLimit(context.Background(), "k", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retry)
}

func TestRateLimitService_CheckLimit_RedisDown(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	svc := NewRateLimitService(rdb)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("ratelimit:k").SetErr(errors.New("connection refused"))

	_, _, _, err := svc.CheckLimit(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}
