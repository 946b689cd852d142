package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devilmonastery/coderstoolbox/internal/seo"
)

// Templates are at <project>/web/templates; tests run from
// <project>/web/internal/render
func getTestTemplatesPath() string {
	return filepath.Join("..", "..", "templates")
}

var requiredPages = []string{
	"home.html",
	"tools.html",
	"tool.html",
	"account.html",
	"error.html",
}

func TestLoadTemplates(t *testing.T) {
	ts, err := LoadTemplates(getTestTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	for _, required := range requiredPages {
		if !ts.Has(required) {
			t.Errorf("Expected template %q to be loaded, but it wasn't found", required)
		}
	}

	names := ts.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("expected sorted names, got %v", names)
		}
	}
}

func TestLoadTemplates_MissingDirectory(t *testing.T) {
	if _, err := LoadTemplates(filepath.Join(t.TempDir(), "nothing")); err == nil {
		t.Error("expected error for a directory without pages")
	}
}

func TestTemplateSourceFileExists(t *testing.T) {
	templatesPath := getTestTemplatesPath()

	requiredFiles := map[string]string{
		"base layout":      filepath.Join(templatesPath, "layouts", "base.html"),
		"meta component":   filepath.Join(templatesPath, "components", "meta.html"),
		"header component": filepath.Join(templatesPath, "components", "header.html"),
		"footer component": filepath.Join(templatesPath, "components", "footer.html"),
		"tool page":        filepath.Join(templatesPath, "pages", "tool.html"),
		"error page":       filepath.Join(templatesPath, "pages", "error.html"),
	}

	for name, path := range requiredFiles {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Required template file %q missing at %s: %v", name, path, err)
		}
	}
}

// Each page is parsed in isolation, so executing one page must never pick
// up another page's "content" block
func TestPagesAreIsolated(t *testing.T) {
	ts, err := LoadTemplates(getTestTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	site := seo.Site{Name: "Coders Toolbox", Tagline: "Tools"}
	data := map[string]interface{}{
		"User":        nil,
		"Site":        site,
		"Meta":        site.Page("/oops", seo.Metadata{Title: "Oops", NoIndex: true}),
		"CurrentPage": "",
		"Status":      404,
		"Heading":     "Page not found",
		"Message":     "Nothing here",
	}

	var buf bytes.Buffer
	if err := ts.Execute(&buf, "error.html", data); err != nil {
		t.Fatalf("failed to execute error.html: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Page not found") || !strings.Contains(out, "<!DOCTYPE html>") {
		t.Errorf("expected the error page inside the base layout:\n%s", out)
	}
	if strings.Contains(out, "Featured tools") || strings.Contains(out, "Your account") {
		t.Errorf("error page rendered another page's content:\n%s", out)
	}
}

func TestExecute_UnknownPage(t *testing.T) {
	ts, err := LoadTemplates(getTestTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	if err := ts.Execute(&bytes.Buffer{}, "missing.html", nil); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"":                   "?",
		"   ":                "?",
		"ada":                "A",
		"Ada Lovelace":       "AL",
		"grace brewster hop": "GB",
		"élodie durand":      "ÉD",
	}
	for in, want := range tests {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAvatarColors(t *testing.T) {
	if got := AvatarColors(""); got != "from-gray-400 to-gray-600" {
		t.Errorf("unexpected color for empty name: %q", got)
	}
	if AvatarColors("Ada") != AvatarColors("ada") {
		t.Error("expected colors to ignore case")
	}
}

func TestAssetURL(t *testing.T) {
	old := Version
	Version = "abc123"
	defer func() { Version = old }()

	for _, in := range []string{"css/site.css", "/css/site.css"} {
		if got := AssetURL(in); got != "/static/abc123/css/site.css" {
			t.Errorf("AssetURL(%q) = %q", in, got)
		}
	}
}
