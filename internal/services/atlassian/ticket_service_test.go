package atlassian

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/models"
)

type fakeJira struct {
	issue *models.JiraIssue
	err   error
	keys  []string
}

func (f *fakeJira) GetIssue(ctx context.Context, key string) (*models.JiraIssue, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return f.issue, nil
}

func newTicketService(client *fakeConfluence, jira interfaces.JiraClient, source string) *TicketService {
	cfg := common.NewDefaultConfig()
	cfg.Ticket.Source = source
	logger := arbor.NewLogger()
	search := NewSearchService(client, cfg.Search, logger, nil)
	return NewTicketService(client, jira, search, cfg.Ticket, logger, nil)
}

func TestResolveTicket_Confluence(t *testing.T) {
	client := &fakeConfluence{
		hits:  []interfaces.ContentHit{{ID: "42", Title: "NB_0001 Login fails"}},
		pages: map[string]fakePage{"42": {title: "ignored", body: "<p>Steps for NB_0001</p>"}},
	}
	svc := newTicketService(client, nil, common.TicketSourceConfluence)

	ticket, err := svc.ResolveTicket(context.Background(), "NB_0001")

	require.NoError(t, err)
	assert.Equal(t, &models.Ticket{
		Key:         "NB_0001",
		Summary:     "NB_0001 Login fails",
		Description: "<p>Steps for NB_0001</p>",
		PageID:      "42",
		Source:      common.TicketSourceConfluence,
	}, ticket)
	assert.Equal(t, []string{`text ~ "NB_0001" AND type = "page"`}, client.queries)
	assert.Equal(t, []int{1}, client.limits)
}

func TestResolveTicket_NotFound(t *testing.T) {
	client := &fakeConfluence{}
	svc := newTicketService(client, nil, common.TicketSourceConfluence)

	ticket, err := svc.ResolveTicket(context.Background(), "NB_0404")

	assert.Nil(t, ticket)
	assert.True(t, common.IsKind(err, common.KindNotFound))
	assert.Empty(t, client.fetched)
}

func TestResolveTicket_TransportError(t *testing.T) {
	client := &fakeConfluence{searchErr: common.Errorf(common.KindTransport, "confluence.search", "401")}
	svc := newTicketService(client, nil, common.TicketSourceConfluence)

	_, err := svc.ResolveTicket(context.Background(), "NB_0001")

	assert.True(t, common.IsKind(err, common.KindTransport))
}

func TestResolveTicket_Jira(t *testing.T) {
	jira := &fakeJira{issue: &models.JiraIssue{
		Key: "PROJ-123",
		Fields: map[string]interface{}{
			"summary":     "Checkout times out",
			"description": nil,
		},
	}}
	svc := newTicketService(&fakeConfluence{}, jira, common.TicketSourceJira)

	ticket, err := svc.ResolveTicket(context.Background(), "PROJ-123")

	require.NoError(t, err)
	assert.Equal(t, "PROJ-123", ticket.Key)
	assert.Equal(t, "Checkout times out", ticket.Summary)
	assert.Equal(t, "", ticket.Description, "null description becomes empty")
	assert.Equal(t, common.TicketSourceJira, ticket.Source)
	assert.Equal(t, []string{"PROJ-123"}, jira.keys)
}

func TestResolveTicket_JiraWithoutClient(t *testing.T) {
	svc := newTicketService(&fakeConfluence{}, nil, common.TicketSourceJira)

	_, err := svc.ResolveTicket(context.Background(), "PROJ-1")

	assert.True(t, common.IsKind(err, common.KindConfiguration))
}

func TestTicketContext_StrictFilter(t *testing.T) {
	client := &fakeConfluence{
		hits: []interfaces.ContentHit{
			{ID: "1", Title: "Ticket page"},
			{ID: "2", Title: "Loose match"},
		},
		pages: map[string]fakePage{
			"1": {body: "<p>Implements NB_0001</p>"},
			"2": {body: "<p>Mentions nb_0001 and NB 0001 but not the id</p>"},
		},
	}
	svc := newTicketService(client, nil, common.TicketSourceConfluence)

	result, err := svc.TicketContext(context.Background(), "NB_0001")

	require.NoError(t, err)
	assert.Equal(t, "Ticket page", result.Ticket.Summary)
	assert.Equal(t, "NB_0001", result.Query)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "1", result.Documents[0].PageID)
	assert.Equal(t, 1, result.Dropped)
	assert.NoError(t, result.SearchErr)

	require.Len(t, client.queries, 2)
	assert.Equal(t, `siteSearch ~ "NB_0001" AND type = "page"`, client.queries[1])
	assert.Equal(t, 5, client.limits[1], "context search uses the configured limit")
}

func TestTicketContext_NotFound(t *testing.T) {
	svc := newTicketService(&fakeConfluence{}, nil, common.TicketSourceConfluence)

	result, err := svc.TicketContext(context.Background(), "NB_0404")

	assert.Nil(t, result)
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestFilterByLiteral(t *testing.T) {
	docs := []*models.SearchResult{
		{PageID: "1", Body: "contains PROJ-7 here"},
		{PageID: "2", Body: "contains proj-7 lowercase"},
		{PageID: "3", Body: "PROJ-7"},
	}

	kept := FilterByLiteral(docs, "PROJ-7")

	require.Len(t, kept, 2)
	assert.Equal(t, "1", kept[0].PageID)
	assert.Equal(t, "3", kept[1].PageID)
	assert.Empty(t, FilterByLiteral(nil, "PROJ-7"))
}
