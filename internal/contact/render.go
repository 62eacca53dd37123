package contact

import (
	"bytes"
	"embed"
	"html"
	"html/template"
	"regexp"
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type emailData struct {
	Submission
	Owner  string
	SentAt string
}

var blankLines = regexp.MustCompile(`\n\s*\n+`)

// render executes the named template and derives a plain-text alternative.
func render(name string, data emailData) (htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", err
	}
	htmlBody = buf.String()
	return htmlBody, plainText(htmlBody), nil
}

// plainText strips markup and collapses the whitespace left behind.
func plainText(s string) string {
	text := html.UnescapeString(strip.StripTags(s))
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}
