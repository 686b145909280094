package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilequery-overlay/internal/delivery/http/handler"
	"github.com/tilequery-overlay/internal/usecase/dto"
	"go.uber.org/zap"
)

func healthApp(checks map[string]handler.HealthCheck) *fiber.App {
	app := fiber.New()
	app.Get("/health", handler.NewHealthHandler(checks, zap.NewNop()).Health)
	return app
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name         string
		checks       map[string]handler.HealthCheck
		expectedCode int
		expected     dto.HealthResponse
	}{
		{
			name:         "no dependencies",
			checks:       nil,
			expectedCode: http.StatusOK,
			expected:     dto.HealthResponse{Status: "healthy"},
		},
		{
			name:         "all up",
			checks:       map[string]handler.HealthCheck{"redis": ok, "postgres": ok},
			expectedCode: http.StatusOK,
			expected: dto.HealthResponse{
				Status:       "healthy",
				Dependencies: map[string]string{"redis": "up", "postgres": "up"},
			},
		},
		{
			name:         "postgres down",
			checks:       map[string]handler.HealthCheck{"redis": ok, "postgres": down},
			expectedCode: http.StatusServiceUnavailable,
			expected: dto.HealthResponse{
				Status:       "degraded",
				Dependencies: map[string]string{"redis": "up", "postgres": "down"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := healthApp(tt.checks).Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedCode, resp.StatusCode)

			var body dto.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expected, body)
		})
	}
}
