package models

// SearchResult is one wiki page returned by a search, with its full storage-format body.
// Body is the markup exactly as returned by Confluence; plain-text views are derived copies.
type SearchResult struct {
	PageID    string `json:"page_id" yaml:"page_id"`
	Title     string `json:"title" yaml:"title"`
	SourceURL string `json:"source_url" yaml:"source_url"`
	Body      string `json:"body" yaml:"body"`
}

// Ticket is a resolved ticket. For the Confluence source the page title is the
// summary and the page body is the description.
type Ticket struct {
	Key         string `json:"key" yaml:"key"`
	Summary     string `json:"summary" yaml:"summary"`
	Description string `json:"description" yaml:"description"`
	PageID      string `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Source      string `json:"source" yaml:"source"`
}

// ContributorMatch lists the snippets around each occurrence of an identifier on one page
type ContributorMatch struct {
	PageID    string   `json:"page_id" yaml:"page_id"`
	Title     string   `json:"title" yaml:"title"`
	SourceURL string   `json:"source_url" yaml:"source_url"`
	Matches   []string `json:"matches" yaml:"matches"`
}

// JiraIssue represents a Jira issue
type JiraIssue struct {
	Key    string                 `json:"key"`
	Fields map[string]interface{} `json:"fields"`
	ID     string                 `json:"id"`
}
