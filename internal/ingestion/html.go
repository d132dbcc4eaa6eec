// Package ingestion cleans pasted job-description content before storage.
// Admins frequently paste descriptions straight from other job boards, which
// arrive as HTML fragments; everything stored by this service is plain text.
package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern       = regexp.MustCompile(`<\s*[a-zA-Z][^>]*>`)
	blankLinePattern = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// LooksLikeHTML reports whether s appears to contain HTML markup.
func LooksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// ExtractText strips markup from an HTML fragment and returns readable plain
// text: scripts and styles are dropped, block elements become line breaks,
// and whitespace is collapsed. Input that fails to parse is returned
// unchanged, trimmed.
func ExtractText(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return strings.TrimSpace(htmlContent)
	}

	doc.Find("script, style, noscript").Remove()

	// Insert separators so block boundaries survive the text flattening.
	doc.Find("p, div, li, br, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Text()

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, strings.Join(strings.Fields(line), " "))
	}
	text = strings.Join(cleaned, "\n")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// CleanDescription normalizes a job description for storage: HTML input is
// flattened to text, plain input only has its whitespace tidied.
func CleanDescription(s string) string {
	if LooksLikeHTML(s) {
		return ExtractText(s)
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := strings.Join(lines, "\n")
	out = blankLinePattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
