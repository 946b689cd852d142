package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// clearEnv blanks the overrides so a developer's shell doesn't leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "TOOLBOX_BASE_URL", "TOOLBOX_CATALOG", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOOLBOX_TEST_BASE", "https://tools.example.com")

	path := writeConfig(t, `
server:
  port: 9000
  metrics_port: 9100
site:
  base_url: ${TOOLBOX_TEST_BASE}
catalog:
  path: ./catalog.yaml
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.MetricsAddr() != ":9100" {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Site.BaseURL != "https://tools.example.com" {
		t.Errorf("expected env expansion, got %q", cfg.Site.BaseURL)
	}
	if cfg.Catalog.Path != "./catalog.yaml" {
		t.Errorf("unexpected catalog path %q", cfg.Catalog.Path)
	}
	// Unset sections keep their defaults
	if cfg.Templates.Path != "web/templates" || cfg.Static.Path != "web/static" {
		t.Errorf("expected default paths, got %+v %+v", cfg.Templates, cfg.Static)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8181")
	t.Setenv("TOOLBOX_BASE_URL", "https://override.example")
	t.Setenv("TOOLBOX_CATALOG", "/srv/catalog.yaml")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != 8181 {
		t.Errorf("expected PORT to win, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsAddr() != ":8191" {
		t.Errorf("expected metrics on port+10, got %s", cfg.Server.MetricsAddr())
	}
	if cfg.Site.BaseURL != "https://override.example" || cfg.Catalog.Path != "/srv/catalog.yaml" || cfg.Logging.Level != "warn" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad port", body: "server:\n  port: 70000\n", wantErr: "server.port"},
		{name: "bad metrics port", body: "server:\n  metrics_port: -1\n", wantErr: "server.metrics_port"},
		{name: "port too high for default metrics", body: "server:\n  port: 65530\n", wantErr: "server.metrics_port"},
		{name: "bad format", body: "logging:\n  format: xml\n", wantErr: "logging.format"},
		{name: "empty templates", body: "templates:\n  path: \"\"\n", wantErr: "templates.path"},
		{name: "malformed yaml", body: "server: [", wantErr: "failed to parse"},
		{name: "bad PORT env", body: "", env: map[string]string{"PORT": "http"}, wantErr: "invalid PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Server.Addr() != ":8080" || cfg.Server.MetricsAddr() != ":8090" {
		t.Errorf("unexpected default addresses %s %s", cfg.Server.Addr(), cfg.Server.MetricsAddr())
	}
}

func TestHTTPServerAddr(t *testing.T) {
	tests := []struct {
		server      HTTPServer
		wantAddr    string
		wantMetrics string
	}{
		{HTTPServer{Port: 8080}, ":8080", ":8090"},
		{HTTPServer{Host: "127.0.0.1", Port: 9000}, "127.0.0.1:9000", "127.0.0.1:9010"},
		{HTTPServer{Host: "::1", Port: 9000, MetricsPort: 9200}, "[::1]:9000", "[::1]:9200"},
	}

	for _, tt := range tests {
		if got := tt.server.Addr(); got != tt.wantAddr {
			t.Errorf("Addr() = %q, want %q", got, tt.wantAddr)
		}
		if got := tt.server.MetricsAddr(); got != tt.wantMetrics {
			t.Errorf("MetricsAddr() = %q, want %q", got, tt.wantMetrics)
		}
	}
}
