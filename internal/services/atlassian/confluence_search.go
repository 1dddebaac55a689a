package atlassian

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/ticketctx/internal/interfaces"
)

type searchResponse struct {
	Results []struct {
		Content struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Links struct {
				WebUI string `json:"webui"`
			} `json:"_links"`
		} `json:"content"`
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
	Links struct {
		Base string `json:"base"`
	} `json:"_links"`
}

// SearchCQL runs a CQL query against /wiki/rest/api/search and returns content hits
// in response order. Entries without a content id (spaces, users) are skipped.
func (c *Client) SearchCQL(ctx context.Context, cql string, limit int) ([]interfaces.ContentHit, error) {
	params := url.Values{}
	params.Set("cql", cql)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp searchResponse
	if err := c.get(ctx, serviceConfluence, "search", c.baseURL+"/wiki/rest/api/search", params, &resp); err != nil {
		return nil, err
	}

	hits := make([]interfaces.ContentHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Content.ID == "" {
			continue
		}

		title := r.Content.Title
		if title == "" {
			title = r.Title
		}

		webUI := r.Content.Links.WebUI
		if webUI == "" {
			webUI = r.URL
		}

		hits = append(hits, interfaces.ContentHit{
			ID:    r.Content.ID,
			Title: title,
			WebUI: absoluteLink(resp.Links.Base, webUI),
		})
	}

	return hits, nil
}

// absoluteLink prefixes a relative webui path with the site base reported by the API
func absoluteLink(base, link string) string {
	if link == "" || base == "" {
		return link
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(link, "/")
}
