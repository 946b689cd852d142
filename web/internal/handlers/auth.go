package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/coderstoolbox/internal/identity"
	"github.com/devilmonastery/coderstoolbox/internal/seo"
)

const accountsUnavailableMessage = "Sign-in is turned off on this server. Every tool still works without an account."

// SignIn starts the provider's sign-in flow
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if !h.signInEnabled() {
		h.renderError(w, r, http.StatusServiceUnavailable, "Accounts unavailable", accountsUnavailableMessage)
		return
	}

	returnTo := identity.SafeReturnTo(r.URL.Query().Get("return_to"))

	// Already signed in; nothing to do
	if h.guard.CurrentUserSafe(r) != nil {
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
		return
	}

	authURL, err := h.accounts.SignInURL(w, r, returnTo)
	if err != nil {
		h.log.Error("failed to start sign-in", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusInternalServerError, "Sign-in failed", "We couldn't start sign-in. Please try again.")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback completes sign-in and sends the browser back where it started
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.signInEnabled() {
		h.renderError(w, r, http.StatusServiceUnavailable, "Accounts unavailable", accountsUnavailableMessage)
		return
	}

	returnTo, err := h.accounts.HandleCallback(w, r)
	switch {
	case err == nil:
		http.Redirect(w, r, identity.SafeReturnTo(returnTo), http.StatusSeeOther)
	case errors.Is(err, identity.ErrNotConfigured):
		h.renderError(w, r, http.StatusServiceUnavailable, "Accounts unavailable", accountsUnavailableMessage)
	case errors.Is(err, identity.ErrInvalidState):
		h.log.Warn("sign-in callback rejected", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadRequest, "Sign-in expired", "That sign-in link is no longer valid. Please sign in again.")
	default:
		h.log.Error("sign-in callback failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadRequest, "Sign-in failed", "We couldn't sign you in. Please try again.")
	}
}

// SignOut clears the session and goes home
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if h.accounts != nil {
		if err := h.accounts.SignOut(w, r); err != nil {
			h.log.Error("error clearing session", slog.String("error", err.Error()))
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Account shows the signed-in user's profile. It runs behind
// middleware.RequireUser, which has already verified the session.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/handler/sign-in?return_to=/account", http.StatusSeeOther)
		return
	}

	data := h.newTemplateData(r, h.site.Page("/account", seo.Metadata{Title: "Your account", NoIndex: true}))
	data["User"] = user
	data["CurrentPage"] = "account"
	h.renderTemplate(w, "account.html", data)
}
