package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang.org/x/oauth2"

	"github.com/devilmonastery/coderstoolbox/internal/pkg/metrics"
)

const (
	flowSessionName = "toolbox_identity_flow"
	stateKey        = "oauth_state"
	verifierKey     = "oauth_code_verifier"
	returnToKey     = "oauth_return_to"

	flowMaxAge      = 10 * 60 // 10 minutes
	exchangeTimeout = 10 * time.Second
)

// SignInURL starts the authorization-code flow. The state and PKCE verifier
// are kept in a short-lived cookie and checked by HandleCallback.
func (s *Service) SignInURL(w http.ResponseWriter, r *http.Request, returnTo string) (string, error) {
	if !s.SignInEnabled() {
		return "", ErrNotConfigured
	}

	state, err := randomState()
	if err != nil {
		metrics.RecordSignIn("start", err)
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	// Ignore decode errors from a stale flow cookie; it is overwritten below
	flow, _ := s.store.New(r, flowSessionName)
	flow.Options.MaxAge = flowMaxAge
	flow.Values[stateKey] = state
	flow.Values[verifierKey] = verifier
	flow.Values[returnToKey] = SafeReturnTo(returnTo)
	if err := flow.Save(r, w); err != nil {
		metrics.RecordSignIn("start", err)
		return "", fmt.Errorf("failed to save sign-in state: %w", err)
	}

	metrics.RecordSignIn("start", nil)
	return s.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// HandleCallback finishes the authorization-code flow: it checks the state,
// exchanges the code, verifies the returned access token and stores it in
// the session cookie. It returns the local path to send the browser to.
func (s *Service) HandleCallback(w http.ResponseWriter, r *http.Request) (string, error) {
	returnTo, err := s.handleCallback(w, r)
	metrics.RecordSignIn("callback", err)
	return returnTo, err
}

func (s *Service) handleCallback(w http.ResponseWriter, r *http.Request) (string, error) {
	if !s.SignInEnabled() {
		return "", ErrNotConfigured
	}

	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		return "", fmt.Errorf("%w: provider returned %s: %s", ErrSignInFailed, providerErr, q.Get("error_description"))
	}
	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("%w: missing authorization code", ErrSignInFailed)
	}

	flow, err := s.store.Get(r, flowSessionName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	savedState, _ := flow.Values[stateKey].(string)
	verifier, _ := flow.Values[verifierKey].(string)
	returnTo, _ := flow.Values[returnToKey].(string)
	if savedState == "" || verifier == "" {
		return "", fmt.Errorf("%w: no sign-in in progress", ErrInvalidState)
	}
	if subtle.ConstantTimeCompare([]byte(savedState), []byte(q.Get("state"))) != 1 {
		s.log.Warn("sign-in state mismatch, possible CSRF attempt")
		return "", ErrInvalidState
	}

	// One attempt per flow
	flow.Options.MaxAge = -1
	if err := flow.Save(r, w); err != nil {
		s.log.Error("failed to clear sign-in state", slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)

	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %w", ErrSignInFailed, err)
	}

	user, err := s.storeToken(w, r, token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSignInFailed, err)
	}

	s.log.Info("user signed in", slog.String("user_id", user.ID))
	return SafeReturnTo(returnTo), nil
}

// SafeReturnTo keeps post-sign-in redirects on this site. Anything that is
// not a plain absolute path becomes "/". Control characters are rejected
// outright since browsers drop tabs and newlines before resolving a URL.
func SafeReturnTo(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") {
		return "/"
	}
	if strings.HasPrefix(path, "//") || strings.ContainsRune(path, '\\') || strings.IndexFunc(path, unicode.IsControl) >= 0 {
		return "/"
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	return path
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
