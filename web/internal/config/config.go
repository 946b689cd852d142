package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// WebServerConfig represents the web server configuration.
// Identity provider credentials are never read from this file; see
// internal/identity.ConfigFromEnv.
type WebServerConfig struct {
	Server    HTTPServer      `yaml:"server"`
	Site      SiteConfig      `yaml:"site"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Templates TemplatesConfig `yaml:"templates"`
	Static    StaticConfig    `yaml:"static"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPServer holds HTTP server configuration
type HTTPServer struct {
	Host        string `yaml:"host"` // Empty listens on every interface
	Port        int    `yaml:"port" default:"8080"`
	MetricsPort int    `yaml:"metrics_port" default:"0"` // 0 means Port+10
}

// MetricsAddr returns the listen address of the metrics server
func (s HTTPServer) MetricsAddr() string {
	port := s.MetricsPort
	if port == 0 {
		port = s.Port + 10
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

// Addr returns the listen address of the web server
func (s HTTPServer) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SiteConfig overrides values from the catalog's site block
type SiteConfig struct {
	BaseURL string `yaml:"base_url"` // Public URL used for canonical links and the sitemap
}

// CatalogConfig holds catalog loading configuration
type CatalogConfig struct {
	Path string `yaml:"path"` // Empty uses the catalog embedded in the binary
}

// TemplatesConfig holds template loading configuration
type TemplatesConfig struct {
	Path string `yaml:"path" default:"web/templates"` // Path to templates directory
}

// StaticConfig holds static asset configuration
type StaticConfig struct {
	Path string `yaml:"path" default:"web/static"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`  // Log level: debug, info, warn, error
	Format string `yaml:"format" default:"json"` // Log format: json, text
}

// DefaultConfigPaths defines the default locations to search for web configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/web.yaml",
	"./configs/web.yml",
	"./configs/development.yaml",
	"/etc/coderstoolbox/config.yaml",
	"/etc/coderstoolbox/config.yml",
}

// Defaults returns the configuration used when no file is found
func Defaults() *WebServerConfig {
	return &WebServerConfig{
		Server: HTTPServer{
			Port: 8080,
		},
		Templates: TemplatesConfig{
			Path: "web/templates",
		},
		Static: StaticConfig{
			Path: "web/static",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads the web server configuration from the specified file or default locations
func Load(configPath string) (*WebServerConfig, error) {
	config := Defaults()

	// If no config path is provided, search in default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if !fileExists(configPath) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables take precedence
	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnv(config *WebServerConfig) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}
	if baseURL := os.Getenv("TOOLBOX_BASE_URL"); baseURL != "" {
		config.Site.BaseURL = baseURL
	}
	if path := os.Getenv("TOOLBOX_CATALOG"); path != "" {
		config.Catalog.Path = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	return nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the web configuration
func validate(config *WebServerConfig) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if config.Server.MetricsPort < 0 || config.Server.MetricsPort > 65535 {
		return fmt.Errorf("server.metrics_port must be between 0 and 65535")
	}
	if config.Server.MetricsPort == 0 && config.Server.Port+10 > 65535 {
		return fmt.Errorf("server.metrics_port must be set when server.port is above 65525")
	}
	if config.Templates.Path == "" {
		return fmt.Errorf("templates.path cannot be empty")
	}
	switch config.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", config.Logging.Format)
	}
	return nil
}
