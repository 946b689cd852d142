package render

import (
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// descriptionPolicy sanitizes rendered tool descriptions. Links leaving the
// site open in a new tab and carry rel="nofollow noopener".
var descriptionPolicy = newDescriptionPolicy()

func newDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[a-zA-Z0-9]+$`)).OnElements("code")
	return p
}

// Markdown converts a tool description to safe HTML for use in templates.
// Tables, fenced code blocks and bare URLs are supported.
func Markdown(markdown string) template.HTML {
	unsafe := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return template.HTML(descriptionPolicy.SanitizeBytes(unsafe))
}
