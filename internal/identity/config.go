package identity

import (
	"fmt"
	"log/slog"
	"strings"
)

// Environment variables read by ConfigFromEnv
const (
	EnvProjectID            = "TOOLBOX_IDENTITY_PROJECT_ID"
	EnvPublishableClientKey = "TOOLBOX_IDENTITY_PUBLISHABLE_CLIENT_KEY"
	EnvSecretServerKey      = "TOOLBOX_IDENTITY_SECRET_SERVER_KEY"
	EnvAPIURL               = "TOOLBOX_IDENTITY_API_URL"
	EnvRedirectURL          = "TOOLBOX_IDENTITY_REDIRECT_URL"
	EnvMode                 = "TOOLBOX_ENV"
)

const (
	// TokenStoreCookie keeps the provider's access token in an encrypted cookie
	TokenStoreCookie = "cookie"

	// DefaultRedirectURL is where the provider sends the browser after sign-in
	DefaultRedirectURL = "http://localhost:8080/handler/oauth-callback"
)

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// Config holds the identity service credentials.
//
// Every field falls back to the empty string when its variable is unset.
// An empty SecretServerKey is not an error: the service starts in degraded
// mode and reports ErrNotConfigured from its operations.
type Config struct {
	ProjectID            string
	PublishableClientKey string
	SecretServerKey      string

	// TokenStore is always TokenStoreCookie; kept so callers can see which
	// storage mode the handle was built with.
	TokenStore string

	APIURL      string
	RedirectURL string
}

// ConfigFromEnv builds a Config from the environment. Pass os.LookupEnv in
// production and a map-backed function in tests.
func ConfigFromEnv(lookup LookupFunc) Config {
	cfg := Config{
		ProjectID:            "",
		PublishableClientKey: "",
		SecretServerKey:      "",
		TokenStore:           TokenStoreCookie,
		APIURL:               "",
		RedirectURL:          DefaultRedirectURL,
	}
	if lookup == nil {
		return cfg
	}

	if v, ok := lookup(EnvProjectID); ok {
		cfg.ProjectID = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPublishableClientKey); ok {
		cfg.PublishableClientKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvSecretServerKey); ok {
		cfg.SecretServerKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAPIURL); ok {
		cfg.APIURL = strings.TrimRight(strings.TrimSpace(v), "/")
	}
	if v, ok := lookup(EnvRedirectURL); ok && strings.TrimSpace(v) != "" {
		cfg.RedirectURL = strings.TrimSpace(v)
	}

	return cfg
}

// IsDevelopment reports whether TOOLBOX_ENV selects development mode
func IsDevelopment(lookup LookupFunc) bool {
	if lookup == nil {
		return false
	}
	v, _ := lookup(EnvMode)
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "development" || v == "dev"
}

// Configured reports whether the service can verify sessions
func (c Config) Configured() bool {
	return c.ProjectID != "" && c.SecretServerKey != ""
}

// SignInEnabled reports whether the browser sign-in flow can run
func (c Config) SignInEnabled() bool {
	return c.Configured() && c.APIURL != ""
}

// LogDiagnostics reports which credentials are present. Only set/not-set
// flags are logged for the keys.
func (c Config) LogDiagnostics(log *slog.Logger) {
	log.Info("identity configuration",
		slog.Bool("project_id_set", c.ProjectID != ""),
		slog.Bool("publishable_client_key_set", c.PublishableClientKey != ""),
		slog.Bool("secret_server_key_set", c.SecretServerKey != ""),
		slog.String("token_store", c.TokenStore),
		slog.Bool("sign_in_enabled", c.SignInEnabled()))
}

// LogValue keeps the secret out of structured logs
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", c.ProjectID),
		slog.Bool("publishable_client_key_set", c.PublishableClientKey != ""),
		slog.Bool("secret_server_key_set", c.SecretServerKey != ""),
		slog.String("token_store", c.TokenStore),
		slog.String("api_url", c.APIURL),
		slog.String("redirect_url", c.RedirectURL),
	)
}

// String keeps the secret out of fmt output
func (c Config) String() string {
	return fmt.Sprintf("identity.Config{ProjectID:%q PublishableClientKey:%s SecretServerKey:%s TokenStore:%q APIURL:%q RedirectURL:%q}",
		c.ProjectID, setFlag(c.PublishableClientKey), setFlag(c.SecretServerKey), c.TokenStore, c.APIURL, c.RedirectURL)
}

func setFlag(v string) string {
	if v == "" {
		return "<unset>"
	}
	return "<set>"
}
