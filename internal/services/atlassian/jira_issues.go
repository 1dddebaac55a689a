package atlassian

import (
	"context"
	"net/url"
	"strings"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/models"
)

// GetIssue reads the summary and description of a Jira issue
func (c *Client) GetIssue(ctx context.Context, key string) (*models.JiraIssue, error) {
	if key == "" {
		return nil, common.Errorf(common.KindValidation, "jira.issue", "issue key is required")
	}

	params := url.Values{}
	params.Set("fields", "summary,description")

	var issue models.JiraIssue
	endpoint := c.jiraURL + "/rest/api/2/issue/" + url.PathEscape(key)
	if err := c.get(ctx, serviceJira, "issue", endpoint, params, &issue); err != nil {
		return nil, err
	}

	return &issue, nil
}

// issueText returns a string field of an issue. Missing and null fields are "".
// Atlassian Document Format values (Jira Cloud v3 descriptions) are flattened to text.
func issueText(issue *models.JiraIssue, field string) string {
	if issue == nil || issue.Fields == nil {
		return ""
	}

	switch v := issue.Fields[field].(type) {
	case string:
		return v
	case map[string]interface{}:
		var sb strings.Builder
		flattenADF(v, &sb)
		return strings.TrimSpace(sb.String())
	default:
		return ""
	}
}

func flattenADF(node map[string]interface{}, sb *strings.Builder) {
	if text, ok := node["text"].(string); ok {
		sb.WriteString(text)
	}

	children, _ := node["content"].([]interface{})
	for _, child := range children {
		if m, ok := child.(map[string]interface{}); ok {
			flattenADF(m, sb)
		}
	}

	switch node["type"] {
	case "paragraph", "heading", "listItem", "codeBlock", "hardBreak":
		sb.WriteString("\n")
	}
}
