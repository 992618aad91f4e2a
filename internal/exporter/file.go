package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gradebook/internal/infrastructure"
	"gradebook/internal/roster"
	"gradebook/internal/tabular"
)

// FileWriter saves exports under a directory.
type FileWriter struct {
	dir    string
	logger *slog.Logger
}

// NewFileWriter creates a writer for dir.
func NewFileWriter(dir string, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{dir: dir, logger: infrastructure.WithComponent(logger, "exporter")}
}

// Save writes snap in format to <dir>/journal.<ext> and returns the path.
// The file is written to a temp name first so a failed export never leaves
// a truncated journal behind.
func (w *FileWriter) Save(format tabular.Format, snap roster.Snapshot) (string, error) {
	if snap.Empty() {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(w.dir, Filename(format))
	tmp, err := os.CreateTemp(w.dir, ".journal-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(tmp, format, snap); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	w.logger.Info("Journal exported",
		slog.String("format", string(format)),
		slog.String("full_path", fullPath),
		slog.Int("record_count", snap.Len()))
	return fullPath, nil
}
