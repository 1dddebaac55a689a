package atlassian

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
)

var whitespace = regexp.MustCompile(`\s+`)

// stripHTMLTags removes tags, collapses whitespace and decodes entities
func stripHTMLTags(htmlStr string) string {
	stripped := markupTag.ReplaceAllString(htmlStr, " ")
	cleaned := whitespace.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// ConvertHTMLToMarkdown converts storage-format markup to markdown, falling back to
// stripHTMLTags when the converter fails or produces nothing for non-empty input.
func ConvertHTMLToMarkdown(body string, baseURL string, logger arbor.ILogger) string {
	if body == "" {
		return ""
	}

	converter := md.NewConverter(baseURL, true, nil)
	converted, err := converter.ConvertString(body)
	if err != nil {
		if logger != nil {
			logger.Warn().Err(err).Str("fallback", "stripHTMLTags").Msg("HTML to markdown conversion failed, using fallback")
		}
		return stripHTMLTags(body)
	}

	if strings.TrimSpace(converted) == "" {
		if logger != nil {
			logger.Debug().
				Int("html_length", len(body)).
				Msg("HTML to markdown conversion produced empty output, applying fallback strip")
		}
		return stripHTMLTags(body)
	}

	return converted
}

// PlainText renders storage-format markup as single-spaced readable text
func PlainText(body string) string {
	if body == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return stripHTMLTags(body)
	}

	// Block elements are glued together by Text(); pad them so words stay apart
	doc.Find("p, li, td, th, h1, h2, h3, h4, h5, h6, div, br, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return strings.TrimSpace(whitespace.ReplaceAllString(doc.Text(), " "))
}

// Preview truncates s to at most n runes, appending "..." when anything was cut
func Preview(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
