package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilequery-overlay/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.mapbox.com", cfg.Mapbox.BaseURL)
	assert.Equal(t, "mapbox.mapbox-streets-v8", cfg.Mapbox.TilesetID)
	assert.Equal(t, 10*time.Second, cfg.Mapbox.RequestTimeout)
	assert.Equal(t, uint(100), cfg.Tilequery.Radius)
	assert.Equal(t, uint(10), cfg.Tilequery.Limit)
	assert.True(t, cfg.Tilequery.Dedupe)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tilequery-overlay", cfg.Worker.ConsumerGroup)

	params, err := cfg.Tilequery.Parameters()
	require.NoError(t, err)
	assert.Equal(t, domain.GeometryPoint, params.Geometry)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")
	t.Setenv("MAPBOX_BASE_URL", "http://localhost:9000/")
	t.Setenv("TILEQUERY_RADIUS", "250")
	t.Setenv("TILEQUERY_LIMIT", "25")
	t.Setenv("TILEQUERY_GEOMETRY", "polygon")
	t.Setenv("TILEQUERY_LAYERS", "poi_label, building ,")
	t.Setenv("API_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Mapbox.BaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())

	params, err := cfg.Tilequery.Parameters()
	require.NoError(t, err)
	assert.Equal(t, uint(250), params.RadiusMeters)
	assert.Equal(t, uint(25), params.Limit)
	assert.Equal(t, domain.GeometryPolygon, params.Geometry)
	assert.Equal(t, []string{"poi_label", "building"}, params.Layers)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("missing access token", func(t *testing.T) {
		t.Setenv("MAPBOX_ACCESS_TOKEN", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAPBOX_ACCESS_TOKEN is required")
	})

	t.Run("limit above tilequery maximum", func(t *testing.T) {
		t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")
		t.Setenv("TILEQUERY_LIMIT", "51")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit must be within")
	})

	t.Run("mqtt without broker", func(t *testing.T) {
		t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")
		t.Setenv("MQTT_ENABLED", "true")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MQTT_BROKER is required")
	})

	t.Run("mqtt qos out of byte range", func(t *testing.T) {
		t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")
		t.Setenv("MQTT_ENABLED", "true")
		t.Setenv("MQTT_BROKER", "tcp://localhost:1883")
		t.Setenv("MQTT_QOS", "257")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MQTT_QOS must be 0-2, got 257")
	})
}
