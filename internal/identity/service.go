package identity

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/oauth2"

	"github.com/devilmonastery/coderstoolbox/internal/pkg/logger"
	"github.com/devilmonastery/coderstoolbox/internal/pkg/metrics"
)

const (
	// SessionName is the name of the cookie holding the access token
	SessionName = "toolbox_identity"

	// TokenKey is the session key for the provider access token
	TokenKey = "access_token"

	sessionMaxAge = 30 * 24 * 60 * 60 // 30 days
	tokenLeeway   = 30 * time.Second
	cookieKeyInfo = "coderstoolbox identity cookie keys"
)

// Service is the server-side handle to the identity provider. It is safe
// for concurrent use and never mutated after New returns.
type Service struct {
	cfg    Config
	log    *slog.Logger
	secret []byte
	store  *sessions.CookieStore // nil in degraded mode
	oauth  *oauth2.Config        // nil when sign-in is disabled
	client *http.Client          // used for provider API calls
}

var (
	defaultOnce    sync.Once
	defaultService *Service
)

// Default returns the process-wide Service, built from the environment on
// first use. Every call returns the same pointer.
func Default() *Service {
	defaultOnce.Do(func() {
		defaultService = initDefault(os.LookupEnv, slog.Default())
	})
	return defaultService
}

func initDefault(lookup LookupFunc, log *slog.Logger) *Service {
	cfg := ConfigFromEnv(lookup)
	if IsDevelopment(lookup) {
		cfg.LogDiagnostics(log.With(slog.String("component", "identity")))
	}
	return New(cfg, log)
}

// New builds a Service. It never fails: missing credentials leave the
// service in degraded mode where operations return ErrNotConfigured.
func New(cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.TokenStore == "" {
		cfg.TokenStore = TokenStoreCookie
	}

	s := &Service{
		cfg: cfg,
		log: log.With(slog.String("component", "identity")),
	}

	if !cfg.Configured() {
		s.log.Warn("identity credentials missing, accounts are disabled")
		metrics.SetIdentityConfigured(false)
		return s
	}

	hashKey, blockKey, err := deriveCookieKeys(cfg.SecretServerKey, cfg.ProjectID)
	if err != nil {
		s.log.Error("failed to derive cookie keys, accounts are disabled", slog.Any("error", err))
		metrics.SetIdentityConfigured(false)
		return s
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.RedirectURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(sessionMaxAge)

	s.secret = []byte(cfg.SecretServerKey)
	s.store = store

	if cfg.APIURL != "" {
		var host string
		if u, err := url.Parse(cfg.APIURL); err == nil {
			host = u.Host
		}
		s.client = &http.Client{
			Transport: newProviderTransport(http.DefaultTransport, host),
			Timeout:   exchangeTimeout,
		}
		s.oauth = &oauth2.Config{
			ClientID:     cfg.ProjectID,
			ClientSecret: cfg.PublishableClientKey,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.APIURL + "/api/v1/auth/oauth/authorize",
				TokenURL: cfg.APIURL + "/api/v1/auth/oauth/token",
			},
		}
	}

	metrics.SetIdentityConfigured(true)
	return s
}

// deriveCookieKeys stretches the secret server key into independent HMAC
// and AES keys for the session cookie
func deriveCookieKeys(secret, salt string) (hashKey, blockKey []byte, err error) {
	r := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(cookieKeyInfo))
	hashKey = make([]byte, 32)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive hash key: %w", err)
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive block key: %w", err)
	}
	return hashKey, blockKey, nil
}

// Config returns the configuration the service was built with
func (s *Service) Config() Config {
	return s.cfg
}

// Configured reports whether the service can verify sessions
func (s *Service) Configured() bool {
	return s != nil && s.store != nil
}

// SignInEnabled reports whether the browser sign-in flow is available
func (s *Service) SignInEnabled() bool {
	return s.Configured() && s.oauth != nil
}

// CurrentUser returns the user whose access token is stored in the request's
// session cookie. Verification is local; no network call is made.
func (s *Service) CurrentUser(r *http.Request) (*User, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	session, err := s.store.Get(r, SessionName)
	if err != nil {
		// Cookie signed with another key or tampered with
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	token, ok := session.Values[TokenKey].(string)
	if !ok || token == "" {
		return nil, ErrNoSession
	}

	return s.VerifyToken(token)
}

// VerifyToken checks an access token's signature, audience and expiry
func (s *Service) VerifyToken(tokenString string) (*User, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if tokenString == "" {
		return nil, ErrNoSession
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.cfg.ProjectID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(tokenLeeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	return claims.user(), nil
}

// storeToken verifies the access token and writes it to the session cookie
func (s *Service) storeToken(w http.ResponseWriter, r *http.Request, token string) (*User, error) {
	user, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.store.Get(r, SessionName)
	if err != nil {
		// Stale cookie from an older key; start over
		session, _ = s.store.New(r, SessionName)
	}
	session.Values[TokenKey] = token
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return user, nil
}

// SignOut removes the session cookie. Succeeds even when there is nothing
// to clear or the service is degraded.
func (s *Service) SignOut(w http.ResponseWriter, r *http.Request) error {
	if !s.Configured() {
		return nil
	}

	session, err := s.store.Get(r, SessionName)
	if err != nil {
		session, _ = s.store.New(r, SessionName)
	}
	delete(session.Values, TokenKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
