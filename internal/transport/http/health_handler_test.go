package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "gradebook/internal/errors"
	"gradebook/internal/roster"
	"gradebook/internal/services"
	"gradebook/internal/shared/testutil"
	"gradebook/internal/storage"
)

type unreachableSlot struct{ storage.Slot }

func (unreachableSlot) Ping(context.Context) error { return errors.New("connection refused") }

type fixedClients int

func (c fixedClients) ClientCount() int { return int(c) }

func TestHealthHandler_Endpoints(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	slot := storage.NewMemory()
	journal := services.NewJournalService(roster.NewStore(slot, "", logger), nil, nil, nil, logger)
	handler := NewHealthHandler(services.NewHealthService("v1.0.0-test", "2026-01-01", "memory", slot, journal, fixedClients(3), logger), logger)

	tests := []struct {
		name           string
		handlerFunc    http.HandlerFunc
		expectedStatus int
		checkResponse  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "health",
			handlerFunc:    handler.HealthCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, "v1.0.0-test", body["version"])
			},
		},
		{
			name:           "readiness",
			handlerFunc:    handler.ReadinessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ready", body["status"])
				svcs := body["services"].(map[string]interface{})
				assert.EqualValues(t, 0, svcs["journal"].(map[string]interface{})["students"])
				assert.EqualValues(t, 3, svcs["websocket"].(map[string]interface{})["clients"])
			},
		},
		{
			name:           "liveness",
			handlerFunc:    handler.LivenessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "alive", body["status"])
				assert.Contains(t, body["runtime"], "goroutines")
			},
		},
		{
			name:           "version",
			handlerFunc:    handler.Version,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "memory", body["storage"])
				assert.Equal(t, "2026-01-01", body["build_time"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handlerFunc(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkResponse(t, body)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewHealthHandler(services.NewHealthService("v1", "", "postgres", unreachableSlot{}, nil, nil, logger), logger)

	rec := httptest.NewRecorder()
	handler.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
	assert.True(t, logs.ContainsMessage("readiness check failed"))
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("disabled", func(t *testing.T) {
		h := NewMetricsHandler(nil, errorHandler)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.False(t, h.Enabled())
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("delegates to exporter", func(t *testing.T) {
		h := NewMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("journal_operations_total 1\n"))
		}), errorHandler)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.True(t, h.Enabled())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "journal_operations_total")
	})
}
