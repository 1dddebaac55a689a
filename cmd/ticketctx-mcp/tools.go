package main

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ternarybob/ticketctx/internal/services/tools"
)

// createSearchPagesTool returns the confluence_search_pages tool definition
func createSearchPagesTool() mcp.Tool {
	return mcp.NewTool(tools.ToolSearchPages,
		mcp.WithDescription(tools.DescSearchPages),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for across Confluence pages"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum pages to return (default: 5)"),
		),
	)
}

// createGetTicketPageTool returns the confluence_get_ticket_page tool definition
func createGetTicketPageTool() mcp.Tool {
	return mcp.NewTool(tools.ToolGetTicketPage,
		mcp.WithDescription(tools.DescGetTicketPage),
		mcp.WithString("ticket_id",
			mcp.Required(),
			mcp.Description("Ticket identifier, e.g. NB_0001"),
		),
	)
}

// createTicketLookupTool returns the confluence_ticket_lookup tool definition
func createTicketLookupTool() mcp.Tool {
	return mcp.NewTool(tools.ToolTicketLookup,
		mcp.WithDescription(tools.DescTicketLookup),
		mcp.WithString("ticket_id",
			mcp.Required(),
			mcp.Description("Ticket identifier, e.g. NB_0001"),
		),
	)
}

// createSearchContributorTool returns the confluence_search_contributor tool definition
func createSearchContributorTool() mcp.Tool {
	return mcp.NewTool(tools.ToolSearchContributor,
		mcp.WithDescription(tools.DescSearchContributor),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Contributor name or email address"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum pages to scan (default: 20)"),
		),
	)
}
