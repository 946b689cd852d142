package render

import (
	"crypto/md5"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Version is the build version, set with
// -ldflags "-X github.com/devilmonastery/coderstoolbox/web/internal/render.Version=..."
// It is part of every static asset URL so assets can be cached forever.
var Version = "dev"

// TemplateSet holds all parsed page templates
// Each page is stored as a completely separate template.Template
// to avoid {{define "content"}} block collisions
type TemplateSet struct {
	pages map[string]*template.Template
	mu    sync.RWMutex
}

// Execute renders the specified page template
// pageName should be the filename like "tool.html"
// This method always executes the "base" layout, which will use the
// {{define "content"}}, {{define "title"}}, etc. blocks from the specific page
func (ts *TemplateSet) Execute(w io.Writer, pageName string, data interface{}) error {
	ts.mu.RLock()
	tmpl, ok := ts.pages[pageName]
	ts.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", pageName)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// Has checks if a template exists
func (ts *TemplateSet) Has(pageName string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.pages[pageName]
	return ok
}

// Names returns all available template names, sorted
func (ts *TemplateSet) Names() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.pages))
	for name := range ts.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FuncMap returns the functions available to every template
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"renderMarkdown": Markdown,
		// dict passes several values to a component: {{template "tool-card" (dict "Tool" . "ShowCategory" true)}}
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},
		"initials":     Initials,
		"avatarColors": AvatarColors,
		"assetURL":     AssetURL,
		"statusLabel": func(status string) string {
			switch status {
			case "beta":
				return "Beta"
			case "coming-soon":
				return "Coming soon"
			default:
				return ""
			}
		},
		"year": func() int {
			return time.Now().Year()
		},
	}
}

// Initials returns up to two upper-case initials for an avatar, or "?"
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}

	var result strings.Builder
	for i, word := range words {
		if i >= 2 {
			break
		}
		result.WriteString(strings.ToUpper(string([]rune(word)[0])))
	}
	return result.String()
}

var avatarPalette = []string{
	"from-blue-400 to-blue-600",
	"from-green-400 to-green-600",
	"from-purple-400 to-purple-600",
	"from-pink-400 to-pink-600",
	"from-indigo-400 to-indigo-600",
	"from-red-400 to-red-600",
	"from-yellow-400 to-yellow-600",
	"from-teal-400 to-teal-600",
	"from-orange-400 to-orange-600",
	"from-cyan-400 to-cyan-600",
	"from-emerald-400 to-emerald-600",
	"from-violet-400 to-violet-600",
	"from-rose-400 to-rose-600",
	"from-sky-400 to-sky-600",
	"from-lime-400 to-lime-600",
	"from-amber-400 to-amber-600",
}

// AvatarColors picks a gradient for name, stable across requests
func AvatarColors(name string) string {
	if name == "" {
		return "from-gray-400 to-gray-600"
	}
	hash := md5.Sum([]byte(strings.ToLower(name)))
	return avatarPalette[int(hash[0])%len(avatarPalette)]
}

// AssetURL returns the versioned URL of a file under the static directory
func AssetURL(filename string) string {
	return "/static/" + Version + "/" + strings.TrimPrefix(filename, "/")
}

// LoadTemplates parses and loads all HTML templates with custom functions
// If path is empty, defaults to "web/templates"
// Returns a TemplateSet where each page is completely isolated
func LoadTemplates(path string) (*TemplateSet, error) {
	if path == "" {
		path = "web/templates"
	}

	funcMap := FuncMap()

	baseFile := filepath.Join(path, "layouts", "base.html")
	componentFiles, err := filepath.Glob(filepath.Join(path, "components", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list component templates: %w", err)
	}

	pageFiles, err := filepath.Glob(filepath.Join(path, "pages", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("no page templates found in %s/pages", path)
	}

	ts := &TemplateSet{
		pages: make(map[string]*template.Template),
	}

	// Parse each page into its OWN isolated template: base + components + this page
	for _, pageFile := range pageFiles {
		pageName := filepath.Base(pageFile)

		filesToParse := []string{baseFile}
		filesToParse = append(filesToParse, componentFiles...)
		filesToParse = append(filesToParse, pageFile)

		pageTemplate, err := template.New("base").Funcs(funcMap).ParseFiles(filesToParse...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pageName, err)
		}

		ts.pages[pageName] = pageTemplate
	}

	return ts, nil
}

// LogTemplateNames logs all available template names
func LogTemplateNames(ts *TemplateSet, log *slog.Logger) {
	log.Debug("loaded templates", slog.Any("templates", ts.Names()))
}
