package tools

import (
	"fmt"
	"strings"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/models"
	"github.com/ternarybob/ticketctx/internal/services/atlassian"
)

const (
	lookupPreviewChars      = 500
	descriptionLimit        = 1000
	contributorSnippetLimit = 3
	contributorSnippetChars = 500
)

// FormatSearchReport lists pages with their link, id and a preview of the body in
// the given preview format
func FormatSearchReport(query string, docs []*models.SearchResult, previewChars int, format string) string {
	if len(docs) == 0 {
		return fmt.Sprintf("No pages found matching query: %s", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d page(s) matching '%s':\n\n", len(docs), query)
	for i, doc := range docs {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, doc.Title)
		fmt.Fprintf(&b, "   Link: %s\n", doc.SourceURL)
		fmt.Fprintf(&b, "   Page ID: %s\n", doc.PageID)
		fmt.Fprintf(&b, "   Preview: %s\n", atlassian.Preview(previewBody(doc.Body, format), previewChars))
		if i < len(docs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatTicketPage shows the ticket fields with the description cut at 1000 characters
func FormatTicketPage(ticket *models.Ticket, format string) string {
	lines := []string{
		fmt.Sprintf("**Ticket ID:** %s", ticket.Key),
		fmt.Sprintf("**Summary (Title):** %s", ticket.Summary),
	}
	if ticket.PageID != "" {
		lines = append(lines, fmt.Sprintf("**Page ID:** %s", ticket.PageID))
	}
	lines = append(lines, "\n**Description:**")

	description := ticketText(ticket, format)
	if runes := []rune(description); len(runes) > descriptionLimit {
		description = string(runes[:descriptionLimit]) + "...\n[Content truncated]"
	}
	lines = append(lines, description)

	return strings.Join(lines, "\n")
}

// FormatTicketContext renders the ticket summary, the strictly filtered page list
// and a 500-character preview of each page.
func FormatTicketContext(result *atlassian.TicketContextResult, format string) string {
	lines := []string{
		fmt.Sprintf("Ticket Summary (Page Title): %s", result.Ticket.Summary),
		fmt.Sprintf("Searching Confluence for: %s", result.Query),
		fmt.Sprintf("Found %d relevant pages matching %s.", len(result.Documents), result.Query),
	}
	for _, doc := range result.Documents {
		lines = append(lines, fmt.Sprintf(" - %s (%s)", doc.Title, doc.SourceURL))
	}

	lines = append(lines, "\n=== Extracted Content ===\n")
	for i, doc := range result.Documents {
		lines = append(lines,
			fmt.Sprintf("--- Document %d: %s ---", i+1, doc.Title),
			atlassian.Preview(previewBody(doc.Body, format), lookupPreviewChars),
			"\n",
		)
	}
	lines = append(lines, "=========================")

	return strings.Join(lines, "\n")
}

// FormatContributorReport lists each page with up to three snippets
func FormatContributorReport(identifier string, matches []*models.ContributorMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No contributor matches found for '%s'", identifier)
	}

	lines := []string{fmt.Sprintf("Found matches for '%s':", identifier)}
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("- %s (%s)", m.Title, m.SourceURL))
		for i, snippet := range m.Matches {
			if i == contributorSnippetLimit {
				break
			}
			lines = append(lines, "    • "+atlassian.Preview(snippet, contributorSnippetChars))
		}
	}
	return strings.Join(lines, "\n")
}

// ticketText returns the description: Confluence bodies are markup, Jira text is kept as is
func ticketText(ticket *models.Ticket, format string) string {
	if ticket.Source == common.TicketSourceJira {
		return ticket.Description
	}
	return previewBody(ticket.Description, format)
}

// previewBody strips storage markup unless the raw format is asked for
func previewBody(body, format string) string {
	if format == common.PreviewFormatRaw {
		return body
	}
	return atlassian.PlainText(body)
}
