package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigEnv overrides the CLI config file location
const ConfigEnv = "TOOLBOX_CLI_CONFIG"

// Config is the CLI configuration kept in ~/.coderstoolbox.yaml
type Config struct {
	// Catalog is a catalog file to use instead of the embedded one
	Catalog   string `yaml:"catalog,omitempty"`
	Rendering struct {
		Theme string `yaml:"theme"`
	} `yaml:"rendering"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	config := &Config{}
	config.Rendering.Theme = "auto"
	return config
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	if path := os.Getenv(ConfigEnv); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".coderstoolbox.yaml"), nil
}

// LoadConfig loads the config file, falling back to defaults when it
// doesn't exist
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Rendering.Theme == "" {
		config.Rendering.Theme = "auto"
	}

	return config, nil
}

// SaveConfig saves configuration to the config file
func SaveConfig(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
