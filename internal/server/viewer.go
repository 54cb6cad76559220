package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// DefaultTitle is used when a report has no top-level heading.
const DefaultTitle = "GitHub Trending Report"

//go:embed viewer.html
var viewerHTML string

var (
	viewerTemplate = template.Must(template.New("viewer").Parse(viewerHTML))
	titlePattern   = regexp.MustCompile(`(?m)^# (.+)$`)

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
)

type viewerData struct {
	Title     string
	Content   template.HTML
	Timestamp string
}

// Title returns the text of the first "# " heading in content.
func Title(content string) string {
	if m := titlePattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return DefaultTitle
}

func renderPage(content string, now time.Time) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(content), &body); err != nil {
		return "", eris.Wrap(err, "failed to convert markdown")
	}

	var page bytes.Buffer
	err := viewerTemplate.Execute(&page, viewerData{
		Title: Title(content),
		// goldmark escapes raw HTML in the source unless WithUnsafe is set.
		Content:   template.HTML(body.String()),
		Timestamp: now.Format(timestampLayout),
	})
	if err != nil {
		return "", eris.Wrap(err, "failed to render viewer page")
	}
	return page.String(), nil
}
