package interfaces

import (
	"context"

	"github.com/ternarybob/ticketctx/internal/models"
)

// ContentHit is one entry of a CQL search response
type ContentHit struct {
	ID    string
	Title string
	WebUI string
}

// ConfluenceClient is the subset of the Confluence REST API the services use
type ConfluenceClient interface {
	// SearchCQL runs a CQL filter and returns at most limit content entries in response order
	SearchCQL(ctx context.Context, cql string, limit int) ([]ContentHit, error)
	// FetchPageBody returns a page title and its storage-format body ("" when absent)
	FetchPageBody(ctx context.Context, pageID string) (title string, body string, err error)
}

// JiraClient reads issues from Jira
type JiraClient interface {
	GetIssue(ctx context.Context, key string) (*models.JiraIssue, error)
}
