// Package catalog holds the list of developer tools shown by the site,
// loaded from YAML (an embedded default or a file on disk).
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/devilmonastery/coderstoolbox/internal/seo"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Tool statuses
const (
	StatusAvailable  = "available"
	StatusBeta       = "beta"
	StatusComingSoon = "coming-soon"
)

var (
	// ErrNoTools is returned when a catalog file lists no tools
	ErrNoTools = errors.New("catalog has no tools")

	// ErrDuplicateSlug is returned when two tools share a slug
	ErrDuplicateSlug = errors.New("duplicate tool slug")
)

// Tool is one entry in the catalog. The tool's own implementation lives
// elsewhere; the catalog only describes it.
type Tool struct {
	Name        string       `yaml:"name"`
	Slug        string       `yaml:"slug"`
	Category    string       `yaml:"category"`
	Summary     string       `yaml:"summary"`
	Description string       `yaml:"description"` // markdown
	Keywords    []string     `yaml:"keywords"`
	Status      string       `yaml:"status"`
	Featured    bool         `yaml:"featured"`
	Icon        string       `yaml:"icon"`
	Metadata    seo.Metadata `yaml:"metadata"`
}

// Path returns the tool page's URL path
func (t *Tool) Path() string {
	return "/tools/" + t.Slug
}

// Available reports whether the tool can be used today
func (t *Tool) Available() bool {
	return t.Status == StatusAvailable || t.Status == StatusBeta
}

// PageMetadata returns the tool page's SEO metadata, falling back to the
// tool's name, summary and keywords
func (t *Tool) PageMetadata(site seo.Site) seo.Metadata {
	m := t.Metadata
	if m.Title == "" {
		m.Title = t.Name
	}
	if m.Description == "" {
		m.Description = t.Summary
	}
	if len(m.Keywords) == 0 {
		m.Keywords = t.Keywords
	}
	if t.Status == StatusComingSoon {
		m.NoIndex = true
	}
	return site.Page(t.Path(), m)
}

// Category groups the tools sharing a category name
type Category struct {
	Name  string
	Slug  string
	Tools []*Tool
}

// Catalog is the parsed catalog file. It is read-only after Parse.
type Catalog struct {
	Site  seo.Site `yaml:"site"`
	Items []*Tool  `yaml:"tools"`

	bySlug map[string]*Tool
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the embedded one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// LoadFile reads and parses a catalog file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) normalize() error {
	if len(c.Items) == 0 {
		return ErrNoTools
	}
	if c.Site.Name == "" {
		c.Site.Name = "Coders Toolbox"
	}

	c.bySlug = make(map[string]*Tool, len(c.Items))
	for i, t := range c.Items {
		if t == nil {
			return fmt.Errorf("tool %d: empty entry", i)
		}
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return fmt.Errorf("tool %d: name is required", i)
		}

		if t.Slug == "" {
			t.Slug = slug.Make(t.Name)
		} else if !slug.IsSlug(t.Slug) {
			return fmt.Errorf("tool %q: invalid slug %q", t.Name, t.Slug)
		}

		switch t.Status {
		case "":
			t.Status = StatusAvailable
		case StatusAvailable, StatusBeta, StatusComingSoon:
		default:
			return fmt.Errorf("tool %q: unknown status %q", t.Name, t.Status)
		}

		if t.Category == "" {
			t.Category = "Other"
		}

		if _, exists := c.bySlug[t.Slug]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, t.Slug)
		}
		c.bySlug[t.Slug] = t
	}
	return nil
}

// Tools returns all tools in file order
func (c *Catalog) Tools() []*Tool {
	return c.Items
}

// Tool looks up a tool by slug
func (c *Catalog) Tool(slug string) (*Tool, bool) {
	t, ok := c.bySlug[slug]
	return t, ok
}

// Featured returns featured tools in file order
func (c *Catalog) Featured() []*Tool {
	var featured []*Tool
	for _, t := range c.Items {
		if t.Featured {
			featured = append(featured, t)
		}
	}
	return featured
}

// Categories groups tools by category, sorted by category name; tools keep
// file order within a category
func (c *Catalog) Categories() []Category {
	index := make(map[string]int)
	var cats []Category
	for _, t := range c.Items {
		i, ok := index[t.Category]
		if !ok {
			i = len(cats)
			index[t.Category] = i
			cats = append(cats, Category{Name: t.Category, Slug: slug.Make(t.Category)})
		}
		cats[i].Tools = append(cats[i].Tools, t)
	}

	sort.SliceStable(cats, func(a, b int) bool {
		return strings.ToLower(cats[a].Name) < strings.ToLower(cats[b].Name)
	})
	return cats
}

// Search returns tools whose name, summary, category or keywords contain
// every whitespace-separated term of query, case-insensitively. An empty
// query returns every tool.
func (c *Catalog) Search(query string) []*Tool {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return c.Items
	}

	var results []*Tool
	for _, t := range c.Items {
		haystack := strings.ToLower(strings.Join(append([]string{t.Name, t.Summary, t.Category}, t.Keywords...), " "))
		matched := true
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				matched = false
				break
			}
		}
		if matched {
			results = append(results, t)
		}
	}
	return results
}

// CountByStatus returns the number of tools per status
func (c *Catalog) CountByStatus() map[string]int {
	counts := map[string]int{
		StatusAvailable:  0,
		StatusBeta:       0,
		StatusComingSoon: 0,
	}
	for _, t := range c.Items {
		counts[t.Status]++
	}
	return counts
}
