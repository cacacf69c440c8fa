package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ResolveConfFilePath resolves configPath against SERVICE_HOME/conf.
// Absolute paths and existing test_ files in the working directory are used as-is.
func ResolveConfFilePath(configPath string) string {
	if filepath.IsAbs(configPath) {
		return configPath
	}

	if strings.HasPrefix(filepath.Base(configPath), "test_") {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	homeDir := os.Getenv("SERVICE_HOME")
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, "conf", configPath)
}

// LoadConfigMap reads a yaml file into a generic map
func LoadConfigMap(configPath string) (map[string]any, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %s", configPath)
	}

	config := make(map[string]any)
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "error parsing YAML config file %s", configPath)
	}

	return config, nil
}
