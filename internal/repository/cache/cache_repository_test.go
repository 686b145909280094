package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilequery-overlay/internal/domain"
)

// getTestRedisClient creates a Redis client for testing
func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	client.Del(ctx, OverlayKey)

	return client
}

func TestCacheRepository_SetOverlay(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newCacheRepository(client, zap.NewNop())
	ctx := context.Background()
	defer client.Del(ctx, OverlayKey)

	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{-75.0, 40.0})
	f.Properties["name"] = "Museum"
	fc.Append(f)

	overlay := &domain.OverlaySource{
		Features:             fc,
		LastAppliedRequestID: 42,
		UpdatedAt:            time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.SetOverlay(ctx, overlay, time.Minute))

	ttl, err := client.TTL(ctx, OverlayKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	raw, err := client.Get(ctx, OverlayKey).Bytes()
	require.NoError(t, err)

	var got domain.OverlaySource
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, uint64(42), got.LastAppliedRequestID)
	assert.True(t, overlay.UpdatedAt.Equal(got.UpdatedAt))
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Museum", got.Features.Features[0].Properties["name"])
	assert.Equal(t, orb.Point{-75.0, 40.0}, got.Features.Features[0].Geometry)
}
