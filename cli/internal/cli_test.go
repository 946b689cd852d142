package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/coderstoolbox/internal/identity"
)

// setupCLI points the CLI at a throwaway config file and clears the identity
// environment. It returns the config path.
func setupCLI(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toolbox.yaml")
	t.Setenv(ConfigEnv, path)
	for _, key := range []string{
		identity.EnvProjectID,
		identity.EnvPublishableClientKey,
		identity.EnvSecretServerKey,
		identity.EnvAPIURL,
		identity.EnvRedirectURL,
	} {
		t.Setenv(key, "")
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogList(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "catalog", "list")
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	if !strings.HasPrefix(out, "SLUG") {
		t.Errorf("missing header:\n%s", out)
	}
	for _, want := range []string{"complexity-analyzer", "json-formatter", "base64", "uuid-generator"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCatalogList_Category(t *testing.T) {
	setupCLI(t)

	for _, category := range []string{"Formatters", "formatters"} {
		out, err := runCLI(t, "tools", "ls", "--category", category)
		if err != nil {
			t.Fatalf("catalog list --category %s: %v", category, err)
		}
		if !strings.Contains(out, "json-formatter") || !strings.Contains(out, "sql-formatter") {
			t.Errorf("--category %s missing formatters:\n%s", category, out)
		}
		if strings.Contains(out, "base64") {
			t.Errorf("--category %s listed an encoder:\n%s", category, out)
		}
	}

	out, err := runCLI(t, "catalog", "list", "--category", "code-quality")
	if err != nil {
		t.Fatalf("catalog list --category code-quality: %v", err)
	}
	if !strings.Contains(out, "complexity-analyzer") {
		t.Errorf("category slug did not match:\n%s", out)
	}
}

func TestCatalogList_NoMatches(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "catalog", "list", "-q", "zzzz-nothing")
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	if strings.TrimSpace(out) != "No tools found." {
		t.Errorf("got %q", out)
	}
}

func TestCatalogShow(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "catalog", "show", "complexity-analyzer")
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	// A bytes.Buffer is not a terminal, so the markdown comes through as-is
	for _, want := range []string{
		"# Complexity Analyzer",
		"*Code Quality*",
		"**Cyclomatic complexity**",
		"http://localhost:8080/tools/complexity-analyzer",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCatalogShow_Unknown(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "catalog", "show", "no-such-tool")
	if err == nil || !strings.Contains(err.Error(), `"no-such-tool"`) {
		t.Errorf("expected unknown slug error, got %v", err)
	}
}

func TestCatalogFlagOverridesConfig(t *testing.T) {
	setupCLI(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "site:\n  name: Mini\n  base_url: https://mini.example\ntools:\n  - name: Only Tool\n    category: Misc\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--catalog", path, "catalog", "list")
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	if !strings.Contains(out, "only-tool") || strings.Contains(out, "json-formatter") {
		t.Errorf("flag catalog not used:\n%s", out)
	}

	if _, err := runCLI(t, "--catalog", filepath.Join(t.TempDir(), "missing.yaml"), "catalog", "list"); err == nil {
		t.Error("expected error for missing catalog file")
	}
}

func TestIdentityCheck_NotConfigured(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "identity", "check")
	if err != nil {
		t.Fatalf("identity check: %v", err)
	}
	if !strings.Contains(out, "Accounts: disabled") {
		t.Errorf("expected disabled accounts:\n%s", out)
	}

	_, err = runCLI(t, "identity", "check", "--strict")
	if !errors.Is(err, identity.ErrNotConfigured) {
		t.Errorf("--strict: got %v, want ErrNotConfigured", err)
	}
}

func TestIdentityCheck_NeverPrintsValues(t *testing.T) {
	setupCLI(t)
	t.Setenv(identity.EnvProjectID, "proj-visible-id")
	t.Setenv(identity.EnvPublishableClientKey, "pk-client-value")
	t.Setenv(identity.EnvSecretServerKey, "sk-very-secret-value")
	t.Setenv(identity.EnvAPIURL, "https://auth.example")

	out, err := runCLI(t, "identity", "check", "--strict")
	if err != nil {
		t.Fatalf("identity check: %v", err)
	}
	for _, leaked := range []string{"sk-very-secret-value", "pk-client-value"} {
		if strings.Contains(out, leaked) {
			t.Errorf("output leaked %q:\n%s", leaked, out)
		}
	}
	if !strings.Contains(out, "Accounts: enabled") {
		t.Errorf("expected enabled accounts:\n%s", out)
	}
	if strings.Contains(out, "not set") {
		t.Errorf("every setting was provided:\n%s", out)
	}
}

func TestIdentityCheck_SessionsOnly(t *testing.T) {
	setupCLI(t)
	t.Setenv(identity.EnvProjectID, "proj")
	t.Setenv(identity.EnvSecretServerKey, "secret")

	out, err := runCLI(t, "identity", "check")
	if err != nil {
		t.Fatalf("identity check: %v", err)
	}
	if !strings.Contains(out, "sessions only") {
		t.Errorf("expected sessions-only report:\n%s", out)
	}
}

func TestIdentityVerifyToken(t *testing.T) {
	setupCLI(t)
	t.Setenv(identity.EnvProjectID, "proj")
	t.Setenv(identity.EnvSecretServerKey, "secret-key-for-tests")

	claims := jwt.MapClaims{
		"sub":   "user-42",
		"aud":   "proj",
		"email": "ada@example.com",
		"name":  "Ada Lovelace",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret-key-for-tests"))
	if err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "identity", "verify-token", token)
	if err != nil {
		t.Fatalf("verify-token: %v", err)
	}
	for _, want := range []string{"user-42", "Ada Lovelace", "ada@example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-key"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "identity", "verify-token", bad); !errors.Is(err, identity.ErrInvalidToken) {
		t.Errorf("wrong key: got %v, want ErrInvalidToken", err)
	}
}

func TestIdentityVerifyToken_NotConfigured(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "identity", "verify-token", "abc")
	if !errors.Is(err, identity.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}

func TestConfigSetThemeAndShow(t *testing.T) {
	path := setupCLI(t)

	out, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "theme: auto") {
		t.Errorf("default theme missing:\n%s", out)
	}

	if _, err := runCLI(t, "config", "set-theme", "dracula"); err != nil {
		t.Fatalf("set-theme: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	out, err = runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "theme: dracula") {
		t.Errorf("theme not saved:\n%s", out)
	}

	out, err = runCLI(t, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), path)
	}
}

func TestConfigSetTheme_Invalid(t *testing.T) {
	path := setupCLI(t)

	if _, err := runCLI(t, "config", "set-theme", "neon"); err == nil {
		t.Error("expected error for unknown theme")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("config file written for rejected theme: %v", err)
	}
}

func TestConfigSetCatalog(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "config", "set-catalog", "/srv/catalog.yaml")
	if err != nil {
		t.Fatalf("set-catalog: %v", err)
	}
	if !strings.Contains(out, "/srv/catalog.yaml") {
		t.Errorf("got %q", out)
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.Catalog != "/srv/catalog.yaml" {
		t.Errorf("Catalog = %q", config.Catalog)
	}
}

func TestRenderMarkdown_Unstyled(t *testing.T) {
	md := "# Title\n\nbody\n"
	if got := renderMarkdown(md, "dark", false); got != md {
		t.Errorf("unstyled render changed the input: %q", got)
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
