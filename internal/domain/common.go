package domain

import (
	"fmt"
	"math"
	"strings"
)

// Point - географическая точка (WGS 84)
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate проверяет, что координаты лежат в допустимых диапазонах
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return ErrInvalidPoint
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ErrInvalidPoint
	}
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.Lat, p.Lon)
}

// GeometryFilter ограничивает результаты Tilequery одним типом геометрии
type GeometryFilter int

const (
	GeometryAny GeometryFilter = iota
	GeometryPoint
	GeometryLineString
	GeometryPolygon
)

var geometryNames = map[GeometryFilter]string{
	GeometryAny:        "any",
	GeometryPoint:      "point",
	GeometryLineString: "linestring",
	GeometryPolygon:    "polygon",
}

func (g GeometryFilter) String() string {
	if name, ok := geometryNames[g]; ok {
		return name
	}
	return fmt.Sprintf("geometry(%d)", int(g))
}

// QueryValue - значение параметра geometry для Tilequery API.
// Для GeometryAny параметр не передаётся.
func (g GeometryFilter) QueryValue() string {
	if g == GeometryAny {
		return ""
	}
	return g.String()
}

func (g GeometryFilter) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *GeometryFilter) UnmarshalText(text []byte) error {
	parsed, err := ParseGeometryFilter(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGeometryFilter разбирает фильтр геометрии ("point", "linestring", "polygon", "any")
func ParseGeometryFilter(s string) (GeometryFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return GeometryAny, nil
	case "point":
		return GeometryPoint, nil
	case "linestring":
		return GeometryLineString, nil
	case "polygon":
		return GeometryPolygon, nil
	}
	return GeometryAny, fmt.Errorf("%w: unknown geometry filter %q", ErrInvalidQueryParameters, s)
}

// MaxTilequeryLimit - верхняя граница limit у Mapbox Tilequery API
const MaxTilequeryLimit = 50

// QueryParameters - параметры точечно-радиусного запроса.
// Неизменяемы в рамках одного запроса: слои копируются при создании.
type QueryParameters struct {
	RadiusMeters uint           `json:"radius_meters"`
	Limit        uint           `json:"limit"`
	Geometry     GeometryFilter `json:"geometry"`
	Layers       []string       `json:"layers,omitempty"`
	Dedupe       bool           `json:"dedupe"`
}

// NewQueryParameters создает и валидирует параметры запроса
func NewQueryParameters(radiusMeters, limit uint, geometry GeometryFilter, layers []string, dedupe bool) (QueryParameters, error) {
	params := QueryParameters{
		RadiusMeters: radiusMeters,
		Limit:        limit,
		Geometry:     geometry,
		Layers:       normalizeLayers(layers),
		Dedupe:       dedupe,
	}
	if err := params.Validate(); err != nil {
		return QueryParameters{}, err
	}
	return params, nil
}

// Validate проверяет ограничения Tilequery API
func (p QueryParameters) Validate() error {
	if p.Limit == 0 || p.Limit > MaxTilequeryLimit {
		return fmt.Errorf("%w: limit must be within 1..%d, got %d", ErrInvalidQueryParameters, MaxTilequeryLimit, p.Limit)
	}
	if _, ok := geometryNames[p.Geometry]; !ok {
		return fmt.Errorf("%w: unknown geometry filter %d", ErrInvalidQueryParameters, int(p.Geometry))
	}
	return nil
}

// Clone возвращает копию, не разделяющую срез слоёв
func (p QueryParameters) Clone() QueryParameters {
	clone := p
	if p.Layers != nil {
		clone.Layers = append([]string(nil), p.Layers...)
	}
	return clone
}

func normalizeLayers(layers []string) []string {
	if len(layers) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(layers))
	result := make([]string, 0, len(layers))
	for _, l := range layers {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		result = append(result, l)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
