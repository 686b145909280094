package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tilequery-overlay/internal/domain"
)

type Config struct {
	Server    ServerConfig
	Mapbox    MapboxConfig
	Tilequery TilequeryConfig
	Overlay   OverlayConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	Log       LogConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins []string
}

type MapboxConfig struct {
	AccessToken    string
	BaseURL        string
	TilesetID      string
	RequestTimeout time.Duration
}

type TilequeryConfig struct {
	Radius   uint
	Limit    uint
	Geometry string
	Layers   []string
	Dedupe   bool
}

type OverlayConfig struct {
	QueryTimeout time.Duration
	SnapshotTTL  time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type MQTTConfig struct {
	Enabled  bool
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      uint
}

type LogConfig struct {
	Level  string
	Format string
}

type WorkerConfig struct {
	ConsumerGroup     string
	StreamReadTimeout time.Duration
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	// .env необязателен: в контейнере всё приходит из окружения
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: parseList(v.GetString("API_CORS_ORIGINS")),
		},
		Mapbox: MapboxConfig{
			AccessToken:    v.GetString("MAPBOX_ACCESS_TOKEN"),
			BaseURL:        strings.TrimRight(v.GetString("MAPBOX_BASE_URL"), "/"),
			TilesetID:      v.GetString("MAPBOX_TILESET_ID"),
			RequestTimeout: time.Duration(v.GetInt("MAPBOX_REQUEST_TIMEOUT_MS")) * time.Millisecond,
		},
		Tilequery: TilequeryConfig{
			Radius:   v.GetUint("TILEQUERY_RADIUS"),
			Limit:    v.GetUint("TILEQUERY_LIMIT"),
			Geometry: v.GetString("TILEQUERY_GEOMETRY"),
			Layers:   parseList(v.GetString("TILEQUERY_LAYERS")),
			Dedupe:   v.GetBool("TILEQUERY_DEDUPE"),
		},
		Overlay: OverlayConfig{
			QueryTimeout: time.Duration(v.GetInt("OVERLAY_QUERY_TIMEOUT_MS")) * time.Millisecond,
			SnapshotTTL:  time.Duration(v.GetInt("OVERLAY_SNAPSHOT_TTL")) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MQTT: MQTTConfig{
			Enabled:  v.GetBool("MQTT_ENABLED"),
			Broker:   v.GetString("MQTT_BROKER"),
			Topic:    v.GetString("MQTT_TOPIC"),
			ClientID: v.GetString("MQTT_CLIENT_ID"),
			Username: v.GetString("MQTT_USERNAME"),
			Password: v.GetString("MQTT_PASSWORD"),
			QoS:      v.GetUint("MQTT_QOS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Worker: WorkerConfig{
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")

	v.SetDefault("MAPBOX_BASE_URL", "https://api.mapbox.com")
	v.SetDefault("MAPBOX_TILESET_ID", "mapbox.mapbox-streets-v8")
	v.SetDefault("MAPBOX_REQUEST_TIMEOUT_MS", 10000)

	// Значения из исходного демо: радиус 100 м, 10 результатов, только точки
	v.SetDefault("TILEQUERY_RADIUS", 100)
	v.SetDefault("TILEQUERY_LIMIT", 10)
	v.SetDefault("TILEQUERY_GEOMETRY", "point")
	v.SetDefault("TILEQUERY_DEDUPE", true)

	v.SetDefault("OVERLAY_QUERY_TIMEOUT_MS", 15000)
	v.SetDefault("OVERLAY_SNAPSHOT_TTL", 3600)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 1800)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 300)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("MQTT_TOPIC", "devices/+/location")
	v.SetDefault("MQTT_CLIENT_ID", "tilequery-overlay")
	v.SetDefault("MQTT_QOS", 1)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WORKER_CONSUMER_GROUP", "tilequery-overlay")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 1000)
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.Mapbox.AccessToken == "" {
		errs = append(errs, "MAPBOX_ACCESS_TOKEN is required")
	}
	if c.Mapbox.TilesetID == "" {
		errs = append(errs, "MAPBOX_TILESET_ID is required")
	}
	if c.Mapbox.RequestTimeout <= 0 {
		errs = append(errs, "MAPBOX_REQUEST_TIMEOUT_MS must be positive")
	}
	if c.Overlay.QueryTimeout <= 0 {
		errs = append(errs, "OVERLAY_QUERY_TIMEOUT_MS must be positive")
	}
	if _, err := c.Tilequery.Parameters(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled && c.Database.DBName == "" {
		errs = append(errs, "DB_NAME is required when DB_ENABLED=true")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, "MQTT_BROKER is required when MQTT_ENABLED=true")
	}
	if c.MQTT.Enabled && c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Sprintf("MQTT_QOS must be 0-2, got %d", c.MQTT.QoS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Parameters собирает параметры запроса Tilequery из конфигурации
func (t TilequeryConfig) Parameters() (domain.QueryParameters, error) {
	geometry, err := domain.ParseGeometryFilter(t.Geometry)
	if err != nil {
		return domain.QueryParameters{}, err
	}
	return domain.NewQueryParameters(t.Radius, t.Limit, geometry, t.Layers, t.Dedupe)
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
