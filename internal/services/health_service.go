package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"gradebook/internal/infrastructure"
	"gradebook/internal/storage"
)

// ClientCounter reports connected change-notification clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	driver    string
	slot      storage.Slot
	journal   *JournalService
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. journal and clients may be nil.
func NewHealthService(version, buildTime, driver string, slot storage.Slot, journal *JournalService, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		driver:    driver,
		slot:      slot,
		journal:   journal,
		clients:   clients,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready only when the snapshot slot answers.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	storageHealth := ServiceHealth{Status: "ready", Message: hs.driver}
	if hs.slot == nil {
		storageHealth = ServiceHealth{Status: "not_ready", Message: "storage not configured"}
	} else if err := hs.slot.Ping(ctx); err != nil {
		infrastructure.WithError(hs.logger, err).WarnContext(ctx, "storage ping failed",
			slog.String("driver", hs.driver))
		storageHealth = ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	status.Services["storage"] = storageHealth

	if hs.journal != nil {
		status.Services["journal"] = map[string]interface{}{
			"status":   "ready",
			"students": hs.journal.Size(),
		}
	}
	if hs.clients != nil {
		status.Services["websocket"] = map[string]interface{}{
			"status":  "ready",
			"clients": hs.clients.ClientCount(),
		}
	}

	if storageHealth.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"storage":    hs.driver,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}
