package atlassian

import (
	"context"
	"net/url"

	"github.com/ternarybob/ticketctx/internal/common"
)

// contentResponse is the subset of /wiki/rest/api/content/{id}?expand=body.storage we read.
// Absent body/storage/value objects decode to their zero values.
type contentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
}

// FetchPageBody returns the title and storage-format body of a page.
// A page without a body yields an empty body rather than an error.
func (c *Client) FetchPageBody(ctx context.Context, pageID string) (string, string, error) {
	if pageID == "" {
		return "", "", common.Errorf(common.KindValidation, "confluence.content", "page id is required")
	}

	params := url.Values{}
	params.Set("expand", "body.storage")

	var page contentResponse
	endpoint := c.baseURL + "/wiki/rest/api/content/" + url.PathEscape(pageID)
	if err := c.get(ctx, serviceConfluence, "content", endpoint, params, &page); err != nil {
		return "", "", err
	}

	c.metrics.AddPagesFetched(1)

	return page.Title, page.Body.Storage.Value, nil
}
