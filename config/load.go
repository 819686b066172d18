package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// The name of the config file looked up in the standard locations.
const fileName = "baker2.yaml"

// Load loads configuration with priority: defaults < file. If path is empty
// the standard locations are searched and a missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads the config stored at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		fileName,
		filepath.Join(ConfigDir(), fileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "baker2")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "baker2")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "baker2")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "baker2")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
