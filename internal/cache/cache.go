// Package cache prepares the browser runtime cache before launch.
//
// A read-only bundle (CAMOUFOX_BUNDLE_PATH) is linked into the cache entry
// by entry instead of copied, and version.json is written when the bundle's
// version is known.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smazurov/camoufox-launcher/internal/logging"
)

// Environment variables read by Seed.
const (
	EnvBundlePath = "CAMOUFOX_BUNDLE_PATH"
	EnvVersion    = "CAMOUFOX_VERSION"
	EnvRelease    = "CAMOUFOX_RELEASE"
)

// Dir returns $XDG_CACHE_HOME/camoufox, or ~/.cache/camoufox.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "camoufox"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", "camoufox"), nil
}

// Seed links every bundle entry missing from the cache and records the
// bundle version. It does nothing when no bundle directory is configured.
func Seed(logger logging.Logger) error {
	bundle := os.Getenv(EnvBundlePath)
	if bundle == "" {
		return nil
	}
	if info, err := os.Stat(bundle); err != nil || !info.IsDir() {
		logger.Debug("Bundle path is not a directory, skipping cache seed", "path", bundle)
		return nil
	}

	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	entries, err := os.ReadDir(bundle)
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}

	linked := 0
	for _, entry := range entries {
		dst := filepath.Join(dir, entry.Name())
		// Lstat so that dangling links count as present.
		if _, err := os.Lstat(dst); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("inspect %s: %w", dst, err)
		}
		if err := os.Symlink(filepath.Join(bundle, entry.Name()), dst); err != nil {
			return fmt.Errorf("link %s: %w", entry.Name(), err)
		}
		linked++
	}

	version, release := os.Getenv(EnvVersion), os.Getenv(EnvRelease)
	if version != "" && release != "" {
		if err := writeVersion(dir, version, release); err != nil {
			return err
		}
	}

	logger.Debug("Seeded runtime cache", "dir", dir, "bundle", bundle, "linked", linked)
	return nil
}

func writeVersion(dir, version, release string) error {
	data, err := json.Marshal(struct {
		Version string `json:"version"`
		Release string `json:"release"`
	}{version, release})
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "version.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
