package messagebus

import (
	"peoplegomodule/utils"

	"github.com/pkg/errors"
)

// LoadProducerConfigMap reads a flat YAML map of client properties.
// Relative paths resolve under $SERVICE_HOME/conf.
func LoadProducerConfigMap(configPath string) (map[string]any, error) {
	configMap, err := utils.LoadConfigMap(utils.ResolveConfFilePath(configPath))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load producer config from %s", configPath)
	}
	return configMap, nil
}

// GetStringValue safely gets a string value from config map with default
func GetStringValue(config map[string]any, key, defaultValue string) string {
	if val, ok := config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetBoolValue safely gets a bool value from config map with default
func GetBoolValue(config map[string]any, key string, defaultValue bool) bool {
	if val, ok := config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}

// GetIntValue safely gets an int value from config map with default
func GetIntValue(config map[string]any, key string, defaultValue int) int {
	if val, ok := config[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return defaultValue
}
