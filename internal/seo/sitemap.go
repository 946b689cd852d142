package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapEntry is one page listed in sitemap.xml
type SitemapEntry struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// WriteSitemap writes a sitemaps.org urlset for entries
func WriteSitemap(w io.Writer, site Site, entries []SitemapEntry) error {
	set := urlSet{XMLNS: sitemapNS}
	for _, e := range entries {
		u := sitemapURL{
			Loc:        site.AbsoluteURL(e.Path),
			ChangeFreq: e.ChangeFreq,
		}
		if e.Priority > 0 {
			u.Priority = fmt.Sprintf("%.1f", e.Priority)
		}
		set.URLs = append(set.URLs, u)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return enc.Flush()
}

// RobotsTxt returns a robots.txt that allows everything except disallow
// and points crawlers at the sitemap
func RobotsTxt(site Site, disallow ...string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if len(disallow) == 0 {
		b.WriteString("Allow: /\n")
	}
	for _, path := range disallow {
		b.WriteString("Disallow: " + path + "\n")
	}
	b.WriteString("\nSitemap: " + site.AbsoluteURL("/sitemap.xml") + "\n")
	return b.String()
}
