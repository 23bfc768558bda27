package project

import (
	"os"
	"path/filepath"

	"github.com/piwi3910/CabinetFit/internal/model"
)

// localConfigPath is the project-local config checked after the user's.
const localConfigPath = "configs/config.yaml"

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.cabinetfit/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cabinetfit")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// SaveAppConfig persists an AppConfig to the given path, as YAML for .yaml
// and .yml files and JSON otherwise.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeFile(path, config)
}

// LoadAppConfig reads an AppConfig from the given path. Fields missing from
// the file keep their defaults.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if err := readFile(path, &config); err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	return config.Normalize(), nil
}

// ResolveConfigPath picks the config file to load.
// Search order: customPath -> ~/.cabinetfit/config.yaml -> ./configs/config.yaml.
// A custom path is returned even if it does not exist; otherwise the first
// existing file wins and "" means none was found.
func ResolveConfigPath(customPath string) string {
	if customPath != "" {
		return customPath
	}
	for _, p := range []string{DefaultConfigPath(), localConfigPath} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadConfig resolves and loads the application config. A custom path must
// exist; without one, a missing config yields the defaults. It returns the
// path that was loaded, or "" for the defaults.
func LoadConfig(customPath string) (model.AppConfig, string, error) {
	path := ResolveConfigPath(customPath)
	if path == "" {
		return model.DefaultAppConfig(), "", nil
	}
	if customPath != "" {
		if _, err := os.Stat(customPath); err != nil {
			return model.AppConfig{}, "", err
		}
	}
	config, err := LoadAppConfig(path)
	if err != nil {
		return model.AppConfig{}, "", err
	}
	return config, path, nil
}
