// Package seo builds the per-page metadata rendered into the layout's
// <head>: title, description, canonical URL, Open Graph and Twitter tags.
package seo

import (
	"net/url"
	"strings"
)

// Site holds site-wide defaults
type Site struct {
	Name          string   `yaml:"name"`
	Tagline       string   `yaml:"tagline"`
	BaseURL       string   `yaml:"base_url"`
	Description   string   `yaml:"description"`
	Keywords      []string `yaml:"keywords"`
	TwitterHandle string   `yaml:"twitter_handle"`
	Locale        string   `yaml:"locale"`
	ImageURL      string   `yaml:"image_url"`
}

// Metadata is what one page renders into <head>
type Metadata struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Canonical   string   `yaml:"canonical"`
	ImageURL    string   `yaml:"image_url"`
	Type        string   `yaml:"type"` // Open Graph type: website, article
	NoIndex     bool     `yaml:"noindex"`

	// Filled by Site.Page
	SiteName      string `yaml:"-"`
	TwitterHandle string `yaml:"-"`
	Locale        string `yaml:"-"`
}

// Page fills m with the site's defaults for the page at path.
// An empty title gives "<name> - <tagline>"; otherwise "<title> | <name>".
func (s Site) Page(path string, m Metadata) Metadata {
	switch {
	case m.Title == "" && s.Tagline != "":
		m.Title = s.Name + " - " + s.Tagline
	case m.Title == "":
		m.Title = s.Name
	case s.Name != "" && !strings.HasSuffix(m.Title, "| "+s.Name):
		m.Title = m.Title + " | " + s.Name
	}

	if m.Description == "" {
		m.Description = s.Description
	}
	if len(m.Keywords) == 0 {
		m.Keywords = s.Keywords
	}
	if m.ImageURL == "" {
		m.ImageURL = s.ImageURL
	}
	if m.ImageURL != "" {
		m.ImageURL = s.AbsoluteURL(m.ImageURL)
	}
	if m.Type == "" {
		m.Type = "website"
	}
	if m.Canonical == "" {
		m.Canonical = s.AbsoluteURL(path)
	} else {
		m.Canonical = s.AbsoluteURL(m.Canonical)
	}

	m.SiteName = s.Name
	m.TwitterHandle = s.TwitterHandle
	m.Locale = s.Locale
	if m.Locale == "" {
		m.Locale = "en_US"
	}
	return m
}

// KeywordList joins keywords for the <meta name="keywords"> tag
func (m Metadata) KeywordList() string {
	return strings.Join(m.Keywords, ", ")
}

// Robots returns the robots meta value
func (m Metadata) Robots() string {
	if m.NoIndex {
		return "noindex, nofollow"
	}
	return "index, follow"
}

// AbsoluteURL resolves path against BaseURL. Absolute URLs are returned
// unchanged, and so is path when BaseURL is unset or invalid.
func (s Site) AbsoluteURL(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	if ref.IsAbs() {
		return ref.String()
	}
	if s.BaseURL == "" {
		return path
	}

	base, err := url.Parse(strings.TrimRight(s.BaseURL, "/") + "/")
	if err != nil {
		return path
	}
	return base.ResolveReference(ref).String()
}
