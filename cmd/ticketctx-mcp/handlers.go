package main

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/ticketctx/internal/services/tools"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleSearchPages implements the confluence_search_pages tool
func handleSearchPages(svc *tools.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		limit := request.GetInt("limit", 5)
		return textResult(svc.SearchPages(ctx, query, limit)), nil
	}
}

// handleGetTicketPage implements the confluence_get_ticket_page tool
func handleGetTicketPage(svc *tools.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticketID, err := request.RequireString("ticket_id")
		if err != nil || ticketID == "" {
			return textResult("Error: ticket_id parameter is required"), nil
		}

		return textResult(svc.GetTicketPage(ctx, ticketID)), nil
	}
}

// handleTicketLookup implements the confluence_ticket_lookup tool
func handleTicketLookup(svc *tools.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticketID, err := request.RequireString("ticket_id")
		if err != nil || ticketID == "" {
			return textResult("Error: ticket_id parameter is required"), nil
		}

		return textResult(svc.TicketLookup(ctx, ticketID)), nil
	}
}

// handleSearchContributor implements the confluence_search_contributor tool
func handleSearchContributor(svc *tools.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		identifier, err := request.RequireString("identifier")
		if err != nil || identifier == "" {
			return textResult("Error: identifier parameter is required"), nil
		}

		limit := request.GetInt("limit", 20)
		return textResult(svc.SearchContributor(ctx, identifier, limit)), nil
	}
}
