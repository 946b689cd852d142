package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/coderstoolbox/internal/seo"
)

// Robots serves robots.txt
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, seo.RobotsTxt(h.site, "/account", "/handler/"))
}

// Sitemap serves sitemap.xml listing the home page, the index and every
// indexable tool
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	entries := []seo.SitemapEntry{
		{Path: "/", ChangeFreq: "weekly", Priority: 1.0},
		{Path: "/tools", ChangeFreq: "weekly", Priority: 0.9},
	}
	for _, t := range h.catalog.Tools() {
		if !t.Available() {
			continue
		}
		priority := 0.7
		if t.Featured {
			priority = 0.8
		}
		entries = append(entries, seo.SitemapEntry{Path: t.Path(), ChangeFreq: "monthly", Priority: priority})
	}

	var buf bytes.Buffer
	if err := seo.WriteSitemap(&buf, h.site, entries); err != nil {
		h.log.Error("failed to build sitemap", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	buf.WriteTo(w)
}
