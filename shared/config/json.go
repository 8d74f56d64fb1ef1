package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	settingsRelPath   = "Db/appsettings.json"
	maxParentSearches = 6
)

// FindSettingsFile locates the JSON settings file.
//
// Lookup order:
//  1. APP_SETTINGS_PATH, then CONFIG_PATH (returned even if absent, so that
//     a wrong explicit path surfaces as a read error).
//  2. Db/appsettings.json in startDir and up to six of its parents.
//
// It returns "" when nothing is found.
func FindSettingsFile(startDir string) string {
	for _, key := range []string{"APP_SETTINGS_PATH", "CONFIG_PATH"} {
		if p := os.Getenv(key); p != "" {
			return p
		}
	}

	dir := startDir
	for i := 0; i <= maxParentSearches; i++ {
		candidate := filepath.Join(dir, settingsRelPath)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// applyJSON overlays the file at path onto c. Keys absent from the file keep
// their current values.
func (c *Config) applyJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	c.SourcePath = path
	return nil
}
