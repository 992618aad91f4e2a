// Package storage provides the key/value slot the roster snapshot is
// persisted to. A slot holds opaque bytes under a string key; the roster
// package owns the payload format.
//
// Drivers:
//   - memory: process-local map, used in tests and for throwaway runs
//   - file: one file per key under a directory, replaced atomically
//   - sqlite: a kv table in a modernc.org/sqlite database
//   - postgres: a kv table reached through the pgx database/sql driver
//   - s3: one object per key in an S3-compatible bucket
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gradebook/internal/config"
	"gradebook/internal/infrastructure"
)

// DefaultKey is the slot key the journal is stored under.
const DefaultKey = "gradeBook"

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Slot is a minimal key/value persistence surface.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the slot selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Slot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverFile
	}
	logger = infrastructure.WithComponent(logger, "storage").With(slog.String("driver", driver))

	var (
		slot Slot
		err  error
	)
	switch driver {
	case DriverMemory:
		slot = NewMemory()
	case DriverFile:
		slot, err = NewFile(cfg.Dir)
	case DriverSQLite:
		slot, err = NewSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		slot, err = NewPostgres(ctx, cfg.PostgresDSN)
	case DriverS3:
		slot, err = NewS3(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "failed to open storage slot")
		return nil, fmt.Errorf("open %s slot: %w", driver, err)
	}

	logger.InfoContext(ctx, "storage slot opened")
	return slot, nil
}
