package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved directories the application writes to.
type Paths struct {
	ExecutableDir string
	DataDir       string
	LogsDir       string
	ExportsDir    string
}

// GetPaths resolves the configured directories. Relative entries are taken
// relative to the executable directory, never the working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.ExecutableDir
	if base == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		base = filepath.Dir(exe)
	}

	resolve := func(dir, fallback string) string {
		if dir == "" {
			dir = fallback
		}
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		ExecutableDir: base,
		DataDir:       resolve(cfg.DataDir, DefaultDataDir),
		LogsDir:       resolve(cfg.LogsDir, DefaultLogsDir),
		ExportsDir:    resolve(cfg.ExportsDir, DefaultExportsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir, p.ExportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Resolve returns path unchanged when absolute, otherwise joined to base.
func Resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
