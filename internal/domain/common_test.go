package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint_Validate(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		valid bool
	}{
		{"origin", Point{Lat: 0, Lon: 0}, true},
		{"philadelphia", Point{Lat: 40.0, Lon: -75.0}, true},
		{"north pole", Point{Lat: 90, Lon: 180}, true},
		{"south west corner", Point{Lat: -90, Lon: -180}, true},
		{"latitude too large", Point{Lat: 90.0001, Lon: 0}, false},
		{"longitude too small", Point{Lat: 0, Lon: -180.5}, false},
		{"nan", Point{Lat: math.NaN(), Lon: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPoint)
			}
		})
	}
}

func TestParseGeometryFilter(t *testing.T) {
	cases := map[string]GeometryFilter{
		"point":      GeometryPoint,
		"Point":      GeometryPoint,
		"linestring": GeometryLineString,
		"polygon":    GeometryPolygon,
		"any":        GeometryAny,
		"":           GeometryAny,
	}
	for in, want := range cases {
		got, err := ParseGeometryFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGeometryFilter("multipoint")
	assert.ErrorIs(t, err, ErrInvalidQueryParameters)

	assert.Equal(t, "", GeometryAny.QueryValue())
	assert.Equal(t, "point", GeometryPoint.QueryValue())
}

func TestNewQueryParameters(t *testing.T) {
	t.Run("normalizes layers", func(t *testing.T) {
		params, err := NewQueryParameters(100, 10, GeometryPoint, []string{" poi_label ", "", "poi_label", "building"}, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"poi_label", "building"}, params.Layers)
		assert.Equal(t, uint(100), params.RadiusMeters)
		assert.True(t, params.Dedupe)
	})

	t.Run("rejects zero limit", func(t *testing.T) {
		_, err := NewQueryParameters(100, 0, GeometryPoint, nil, true)
		assert.ErrorIs(t, err, ErrInvalidQueryParameters)
	})

	t.Run("rejects limit above api maximum", func(t *testing.T) {
		_, err := NewQueryParameters(100, MaxTilequeryLimit+1, GeometryPoint, nil, true)
		assert.ErrorIs(t, err, ErrInvalidQueryParameters)
	})

	t.Run("clone does not share layers", func(t *testing.T) {
		params, err := NewQueryParameters(100, 10, GeometryAny, []string{"road"}, false)
		require.NoError(t, err)
		clone := params.Clone()
		clone.Layers[0] = "water"
		assert.Equal(t, "road", params.Layers[0])
	})
}

func TestQueryError_Is(t *testing.T) {
	netErr := NewNetworkError(errors.New("connection refused"))
	assert.ErrorIs(t, netErr, ErrNetwork)
	assert.NotErrorIs(t, netErr, ErrService)
	assert.Equal(t, "network", ErrorKindOf(netErr))

	svcErr := NewServiceError(422, `{"message":"bad tileset"}`)
	assert.ErrorIs(t, svcErr, ErrService)
	assert.Equal(t, 422, StatusCodeOf(svcErr))
	assert.Contains(t, svcErr.Error(), "status 422")

	wrapped := errors.Join(errors.New("outer"), NewDecodeError(errors.New("unexpected EOF")))
	assert.ErrorIs(t, wrapped, ErrDecode)
	assert.Equal(t, "decode", ErrorKindOf(wrapped))
	assert.Equal(t, "unknown", ErrorKindOf(errors.New("plain")))
}

func TestOverlaySource_Clone(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{2.17, 41.38}))

	src := OverlaySource{Features: fc, LastAppliedRequestID: 7}
	snapshot := src.Clone()

	fc.Append(geojson.NewFeature(orb.Point{2.18, 41.39}))

	assert.Equal(t, 1, snapshot.Len())
	assert.Equal(t, 2, src.Len())
	assert.Equal(t, uint64(7), snapshot.LastAppliedRequestID)

	empty := NewOverlaySource()
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, OverlaySource{}.Clone().Len())
}
