package atlassian

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/metrics"
	"github.com/ternarybob/ticketctx/internal/models"
)

// TicketService resolves tickets and gathers the pages that mention them
type TicketService struct {
	confluence interfaces.ConfluenceClient
	jira       interfaces.JiraClient
	search     *SearchService
	config     common.TicketConfig
	logger     arbor.ILogger
	metrics    *metrics.Metrics
}

// TicketContextResult is the ticket plus the pages that literally mention its id
type TicketContextResult struct {
	Ticket    *models.Ticket         `json:"ticket" yaml:"ticket"`
	Query     string                 `json:"query" yaml:"query"`
	Documents []*models.SearchResult `json:"documents" yaml:"documents"`
	Dropped   int                    `json:"dropped" yaml:"dropped"`
	SearchErr error                  `json:"-" yaml:"-"`
}

// NewTicketService creates a ticket service. jira may be nil when the ticket
// source is confluence.
func NewTicketService(
	confluence interfaces.ConfluenceClient,
	jira interfaces.JiraClient,
	search *SearchService,
	config common.TicketConfig,
	logger arbor.ILogger,
	m *metrics.Metrics,
) *TicketService {
	return &TicketService{
		confluence: confluence,
		jira:       jira,
		search:     search,
		config:     config,
		logger:     logger,
		metrics:    m,
	}
}

// ResolveTicket looks up a single ticket. From Confluence, the first page whose
// text mentions the id is the ticket: its title is the summary and its body the
// description. From Jira, the issue's summary and description fields are used.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	if ticketID == "" {
		return nil, common.Errorf(common.KindValidation, "ticket.resolve", "ticket id is required")
	}

	if s.config.Source == common.TicketSourceJira {
		return s.resolveFromJira(ctx, ticketID)
	}
	return s.resolveFromConfluence(ctx, ticketID)
}

func (s *TicketService) resolveFromConfluence(ctx context.Context, ticketID string) (*models.Ticket, error) {
	hits, err := s.confluence.SearchCQL(ctx, BuildTextFilter(Fragment(ticketID)), 1)
	if err != nil {
		s.logger.Error().Err(err).Str("ticket_id", ticketID).Msg("Error fetching ticket page")
		return nil, err
	}

	if len(hits) == 0 {
		s.logger.Info().Str("ticket_id", ticketID).Msg("No page found for ticket ID")
		return nil, common.Errorf(common.KindNotFound, "ticket.resolve", "no page found for ticket ID: %s", ticketID)
	}

	hit := hits[0]
	title, body, err := s.confluence.FetchPageBody(ctx, hit.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("ticket_id", ticketID).Str("page_id", hit.ID).Msg("Error fetching ticket page")
		return nil, err
	}
	if hit.Title != "" {
		title = hit.Title
	}

	return &models.Ticket{
		Key:         ticketID,
		Summary:     title,
		Description: body,
		PageID:      hit.ID,
		Source:      common.TicketSourceConfluence,
	}, nil
}

func (s *TicketService) resolveFromJira(ctx context.Context, ticketID string) (*models.Ticket, error) {
	if s.jira == nil {
		return nil, common.Errorf(common.KindConfiguration, "ticket.resolve", "jira source selected but no Jira client is configured")
	}

	issue, err := s.jira.GetIssue(ctx, ticketID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			s.logger.Info().Str("ticket_id", ticketID).Msg("No Jira issue found for ticket ID")
		} else {
			s.logger.Error().Err(err).Str("ticket_id", ticketID).Msg("Error fetching Jira issue")
		}
		return nil, err
	}

	key := issue.Key
	if key == "" {
		key = ticketID
	}

	return &models.Ticket{
		Key:         key,
		Summary:     issueText(issue, "summary"),
		Description: issueText(issue, "description"),
		Source:      common.TicketSourceJira,
	}, nil
}

// TicketContext resolves the ticket, searches for pages mentioning its id and keeps
// only the pages whose raw body contains the id verbatim.
//
// A failed page search does not fail the lookup: the result carries no documents
// and SearchErr holds the typed error.
func (s *TicketService) TicketContext(ctx context.Context, ticketID string) (*TicketContextResult, error) {
	ticket, err := s.ResolveTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	docs, searchErr := s.search.Search(ctx, ticketID, s.config.ContextLimit, nil)
	kept := FilterByLiteral(docs, ticketID)
	dropped := len(docs) - len(kept)

	s.metrics.AddStrictFiltered(dropped)

	s.logger.Info().
		Str("ticket_id", ticketID).
		Int("candidates", len(docs)).
		Int("kept", len(kept)).
		Msg("Ticket context assembled")

	return &TicketContextResult{
		Ticket:    ticket,
		Query:     ticketID,
		Documents: kept,
		Dropped:   dropped,
		SearchErr: searchErr,
	}, nil
}

// FilterByLiteral keeps the documents whose raw body contains literal, case-sensitive
func FilterByLiteral(docs []*models.SearchResult, literal string) []*models.SearchResult {
	kept := make([]*models.SearchResult, 0, len(docs))
	for _, doc := range docs {
		if strings.Contains(doc.Body, literal) {
			kept = append(kept, doc)
		}
	}
	return kept
}
