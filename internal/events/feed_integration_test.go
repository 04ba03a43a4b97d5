//go:build integration

package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/matchfund/matchfund-backend/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
}

func TestFeed_RoundTrip(t *testing.T) {
	resetMetricsForTesting()
	rdb := setupRedisContainer(t)
	ctx := context.Background()

	feed := NewFeed(rdb)
	defer func() { _ = feed.Shutdown(ctx) }()

	stream, err := feed.Subscribe(ctx, "match-1", "spectator-1")
	require.NoError(t, err)

	_, err = feed.Subscribe(ctx, "match-1", "spectator-1")
	assert.Error(t, err, "duplicate subscriber id")

	require.NoError(t, feed.Publish(ctx, types.FeedMessage{
		Type:    types.FeedEventRemoved,
		MatchID: "match-1",
		EventID: "e9",
	}))

	select {
	case msg := <-stream:
		assert.Equal(t, types.FeedEventRemoved, msg.Type)
		assert.Equal(t, "e9", msg.EventID)
		assert.NotEmpty(t, msg.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for feed message")
	}

	require.NoError(t, feed.Unsubscribe("match-1", "spectator-1"))

	select {
	case _, ok := <-stream:
		assert.False(t, ok, "stream closes after unsubscribe")
	case <-time.After(3 * time.Second):
		t.Fatal("stream was not closed")
	}
}
