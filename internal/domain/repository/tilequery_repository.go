package repository

import (
	"context"

	"github.com/paulmach/orb/geojson"
	"github.com/tilequery-overlay/internal/domain"
)

// TilequeryRepository - точечно-радиусный запрос к пространственному индексу тайлсета.
// Ошибки - *domain.QueryError (network / service / decode).
type TilequeryRepository interface {
	Query(ctx context.Context, origin domain.Point, params domain.QueryParameters) (*geojson.FeatureCollection, error)
}
