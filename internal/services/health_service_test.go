package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"gradebook/internal/shared/testutil"
	"gradebook/internal/storage"
)

type fixedClients int

func (c fixedClients) ClientCount() int { return int(c) }

func TestHealthService_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		slot       storage.Slot
		wantStatus string
	}{
		{"slot answers", storage.NewMemory(), "ready"},
		{"slot down", &failingSlot{Memory: storage.NewMemory(), err: errors.New("connection refused")}, "not_ready"},
		{"no slot", nil, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.2.3", "", "memory", tt.slot, nil, fixedClients(2), logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			assert.Contains(t, status.Services, "storage")
			assert.Contains(t, status.Services, "websocket")
		})
	}
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	h := newHarness(t, nil)
	importSample(t, h)
	hs := NewHealthService("1.2.3", "2026-10-01", "file", h.slot, h.svc, nil, nil)

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	ready := hs.ReadinessCheck(context.Background())
	journal := ready.Services["journal"].(map[string]interface{})
	assert.Equal(t, 5, journal["students"])

	v := hs.Version()
	assert.Equal(t, "1.2.3", v["version"])
	assert.Equal(t, "file", v["storage"])
	assert.Equal(t, "2026-10-01", v["build_time"])
}
