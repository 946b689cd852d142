package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/coderstoolbox/internal/catalog"
	"github.com/devilmonastery/coderstoolbox/internal/identity"
	"github.com/devilmonastery/coderstoolbox/internal/seo"
	"github.com/devilmonastery/coderstoolbox/web/internal/render"
)

// Accounts is the part of the identity service the sign-in pages use.
// *identity.Service implements it.
type Accounts interface {
	SignInEnabled() bool
	SignInURL(w http.ResponseWriter, r *http.Request, returnTo string) (string, error)
	HandleCallback(w http.ResponseWriter, r *http.Request) (string, error)
	SignOut(w http.ResponseWriter, r *http.Request) error
}

// Handler holds dependencies for all web handlers
type Handler struct {
	catalog   *catalog.Catalog
	site      seo.Site
	templates *render.TemplateSet
	guard     *identity.Guard
	accounts  Accounts
	log       *slog.Logger
}

// New creates a new handler with dependencies.
// guard answers "who is signed in?" for page chrome; accounts drives the
// sign-in flow and may be nil when accounts are disabled.
func New(cat *catalog.Catalog, templates *render.TemplateSet, guard *identity.Guard, accounts Accounts, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:   cat,
		site:      cat.Site,
		templates: templates,
		guard:     guard,
		accounts:  accounts,
		log:       logger.With(slog.String("component", "web_handler")),
	}
}

// signInEnabled reports whether the header should offer a sign-in link
func (h *Handler) signInEnabled() bool {
	return h.accounts != nil && h.accounts.SignInEnabled()
}

// newTemplateData creates a new template data map with standard fields populated
// Callers can add page-specific fields to the returned map
func (h *Handler) newTemplateData(r *http.Request, meta seo.Metadata) map[string]interface{} {
	return map[string]interface{}{
		"User":          h.guard.CurrentUserSafe(r),
		"Site":          h.site,
		"Meta":          meta,
		"SignInEnabled": h.signInEnabled(),
		"ReturnTo":      r.URL.RequestURI(),
		"CurrentPage":   "",
	}
}

// renderTemplate renders a page with a 200 status
func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	h.renderStatus(w, http.StatusOK, name, data)
}

// renderStatus renders a page into a buffer first so a template error can
// still produce a clean 500
func (h *Handler) renderStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}
	h.log.Debug("rendering template", slog.String("template", name))

	var buf bytes.Buffer
	if err := h.templates.Execute(&buf, name, data); err != nil {
		h.log.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Debug("failed to write response", slog.String("error", err.Error()))
	}
}

// renderError renders the shared error page
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	data := h.newTemplateData(r, h.site.Page(r.URL.Path, seo.Metadata{Title: heading, NoIndex: true}))
	data["Status"] = status
	data["Heading"] = heading
	data["Message"] = message
	h.renderStatus(w, status, "error.html", data)
}

// NotFound renders the 404 page; it is also the router's NotFoundHandler
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found",
		"We couldn't find that page. It may have moved, or the tool may not exist yet.")
}
