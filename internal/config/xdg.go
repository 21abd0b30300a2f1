package config

import (
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// appDir is the per-application directory under each XDG base
const appDir = "audiotest"

// XDGDirs provides XDG Base Directory compliant paths
type XDGDirs struct{}

// NewXDGDirs creates a new XDG directory manager
func NewXDGDirs() *XDGDirs {
	return &XDGDirs{}
}

// GetCachePath returns the cache directory path for a specific purpose
func (x *XDGDirs) GetCachePath(purpose string) string {
	cachePath := filepath.Join(xdg.CacheHome, appDir, purpose)
	slog.Debug("generated cache path", "purpose", purpose, "cache_path", cachePath)
	return cachePath
}

// GetConfigPaths returns prioritized paths where config files can be found:
// the user config dir, then the system config dirs
func (x *XDGDirs) GetConfigPaths(filename string) []string {
	paths := make([]string, 0, 1+len(xdg.ConfigDirs))
	paths = append(paths, filepath.Join(xdg.ConfigHome, appDir, filename))
	for _, configDir := range xdg.ConfigDirs {
		paths = append(paths, filepath.Join(configDir, appDir, filename))
	}

	slog.Debug("generated config paths",
		"filename", filename,
		"total_paths", len(paths),
		"user_path", paths[0],
		"system_paths", len(xdg.ConfigDirs))

	return paths
}

// CreateCacheDir creates the cache directory for a specific purpose on fs
func (x *XDGDirs) CreateCacheDir(fs afero.Fs, purpose string) (string, error) {
	cachePath := x.GetCachePath(purpose)
	if err := fs.MkdirAll(cachePath, 0755); err != nil {
		slog.Error("failed to create cache directory", "path", cachePath, "error", err)
		return "", err
	}
	slog.Debug("cache directory ready", "path", cachePath)
	return cachePath, nil
}
