package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"

	"github.com/devilmonastery/coderstoolbox/internal/catalog"
	"github.com/devilmonastery/coderstoolbox/internal/pkg/metrics"
	"github.com/devilmonastery/coderstoolbox/internal/seo"
)

const maxRelatedTools = 4

// ToolsIndex lists every tool by category, or search results for ?q=
func (h *Handler) ToolsIndex(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	meta := seo.Metadata{
		Title:       "All Tools",
		Description: "Browse every tool in " + h.site.Name + ".",
	}
	if query != "" {
		meta.Title = "Search: " + query
		meta.Canonical = "/tools"
		meta.NoIndex = true
	}

	data := h.newTemplateData(r, h.site.Page("/tools", meta))
	data["CurrentPage"] = "tools"
	data["Query"] = query
	if query != "" {
		data["Results"] = h.catalog.Search(query)
	} else {
		data["Categories"] = h.catalog.Categories()
	}

	h.renderTemplate(w, "tools.html", data)
}

// Tool renders a single tool's page
func (h *Handler) Tool(w http.ResponseWriter, r *http.Request) {
	toolSlug := mux.Vars(r)["slug"]
	tool, ok := h.catalog.Tool(toolSlug)
	if !ok {
		h.NotFound(w, r)
		return
	}

	metrics.RecordToolView(tool.Slug)

	data := h.newTemplateData(r, tool.PageMetadata(h.site))
	data["CurrentPage"] = "tools"
	data["Tool"] = tool
	data["CategorySlug"] = slug.Make(tool.Category)
	data["Related"] = h.related(tool)

	h.renderTemplate(w, "tool.html", data)
}

// related returns other tools in the same category
func (h *Handler) related(tool *catalog.Tool) []*catalog.Tool {
	var related []*catalog.Tool
	for _, cat := range h.catalog.Categories() {
		if cat.Name != tool.Category {
			continue
		}
		for _, t := range cat.Tools {
			if t.Slug == tool.Slug {
				continue
			}
			related = append(related, t)
			if len(related) == maxRelatedTools {
				break
			}
		}
	}
	return related
}
