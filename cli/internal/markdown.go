package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderMarkdown renders markdown with glamour for terminal output and
// returns it unchanged otherwise
func renderMarkdown(markdown string, theme string, styled bool) string {
	if !styled {
		return markdown
	}
	if theme == "" {
		theme = "auto"
	}

	rendered, err := glamour.Render(markdown, theme)
	if err != nil {
		// Fall back to plain markdown if rendering fails
		return markdown
	}
	return rendered
}

// printMarkdown renders and prints markdown using the configured theme
func printMarkdown(w io.Writer, config *Config, markdown string) error {
	theme := "auto"
	if config != nil {
		theme = config.Rendering.Theme
	}

	_, err := fmt.Fprint(w, renderMarkdown(markdown, theme, isTerminal(w)))
	return err
}
