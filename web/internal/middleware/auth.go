package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/devilmonastery/coderstoolbox/internal/identity"
)

// AuthMiddleware gates pages that need a signed-in user. Unlike the page
// chrome, which goes through identity.Guard and tolerates any failure,
// these checks ask the identity service directly.
type AuthMiddleware struct {
	accounts identity.Capability
	log      *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(accounts identity.Capability, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		accounts: accounts,
		log:      log.With(slog.String("component", "auth_middleware")),
	}
}

// RequireUser lets the request through only with a verified session. The
// user is stored in the request context for the handler. Anyone else is
// redirected to sign-in with a return path back to this page.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			user *identity.User
			err  = identity.ErrCapabilityUnavailable
		)
		if m.accounts != nil {
			user, err = m.accounts.CurrentUser(r)
		}
		if err != nil || user == nil {
			if err != nil && !errors.Is(err, identity.ErrNoSession) {
				m.log.Debug("session check failed", slog.String("error", err.Error()))
			}
			target := "/handler/sign-in?return_to=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), user)))
	})
}
