package mapbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/tilequery-overlay/internal/config"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	// фрагмент тела ответа с ошибкой, сохраняемый в QueryError
	maxErrorBodyBytes = 512
	// ответ Tilequery ограничен 50 фичами, 8 MiB хватает с запасом
	maxResponseBytes = 8 << 20
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	tilesetID   string
	accessToken string
	logger      *zap.Logger
}

// NewTilequeryClient создает клиент Mapbox Tilequery API
func NewTilequeryClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.TilequeryRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tilesetID:   cfg.TilesetID,
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

// Query выполняет запрос фич тайлсета в радиусе от точки
func (c *client) Query(
	ctx context.Context,
	origin domain.Point,
	params domain.QueryParameters,
) (*geojson.FeatureCollection, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	reqURL, err := c.buildURL(origin, params)
	if err != nil {
		c.logger.Error("Failed to build Tilequery URL", zap.Error(err))
		return nil, domain.NewNetworkError(err)
	}

	c.logger.Debug("Calling Mapbox Tilequery API",
		zap.String("url", redactToken(reqURL)),
		zap.Stringer("origin", origin),
		zap.Uint("radius", params.RadiusMeters),
		zap.Uint("limit", params.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, domain.NewNetworkError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Failed to execute Tilequery request", zap.Error(err))
		return nil, domain.NewNetworkError(fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Warn("Mapbox Tilequery API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, domain.NewServiceError(resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("Failed to read Tilequery response", zap.Error(err))
		return nil, domain.NewNetworkError(fmt.Errorf("failed to read response: %w", err))
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		c.logger.Error("Failed to decode Tilequery response", zap.Error(err))
		return nil, domain.NewDecodeError(err)
	}
	if fc.Type != "FeatureCollection" {
		err := fmt.Errorf("unexpected geojson type %q", fc.Type)
		c.logger.Error("Failed to decode Tilequery response", zap.Error(err))
		return nil, domain.NewDecodeError(err)
	}
	if fc.Features == nil {
		fc.Features = []*geojson.Feature{}
	}

	c.logger.Debug("Mapbox Tilequery API call successful",
		zap.Int("features", len(fc.Features)))

	return fc, nil
}

// buildURL собирает /v4/{tileset}/tilequery/{lon},{lat}.json с параметрами запроса
func (c *client) buildURL(origin domain.Point, params domain.QueryParameters) (*url.URL, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("invalid base url: scheme and host are required")
	}
	if c.tilesetID == "" {
		return nil, errors.New("tileset id is empty")
	}

	coords := strconv.FormatFloat(origin.Lon, 'f', -1, 64) + "," +
		strconv.FormatFloat(origin.Lat, 'f', -1, 64)

	u := base.JoinPath("v4", c.tilesetID, "tilequery", coords+".json")

	q := url.Values{}
	q.Set("radius", strconv.FormatUint(uint64(params.RadiusMeters), 10))
	q.Set("limit", strconv.FormatUint(uint64(params.Limit), 10))
	q.Set("dedupe", strconv.FormatBool(params.Dedupe))
	if g := params.Geometry.QueryValue(); g != "" {
		q.Set("geometry", g)
	}
	if len(params.Layers) > 0 {
		q.Set("layers", strings.Join(params.Layers, ","))
	}
	q.Set("access_token", c.accessToken)
	u.RawQuery = q.Encode()

	return u, nil
}

func redactToken(u *url.URL) string {
	clone := *u
	q := clone.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
	}
	clone.RawQuery = q.Encode()
	return clone.String()
}
