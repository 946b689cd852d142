package handlers

import (
	"net/http"

	"github.com/devilmonastery/coderstoolbox/internal/seo"
)

// Home handles the home page
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}

	data := h.newTemplateData(r, h.site.Page("/", seo.Metadata{}))
	data["CurrentPage"] = "home"
	data["Featured"] = h.catalog.Featured()
	data["Categories"] = h.catalog.Categories()

	h.renderTemplate(w, "home.html", data)
}
