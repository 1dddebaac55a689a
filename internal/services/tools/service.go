// Package tools implements the four read-only Confluence tools. Every tool takes
// primitive arguments and returns one text block; failures are reported in the text.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/metrics"
	"github.com/ternarybob/ticketctx/internal/services/atlassian"
	"github.com/ternarybob/ticketctx/internal/services/connections"
)

// Tool names
const (
	ToolSearchPages       = "confluence_search_pages"
	ToolGetTicketPage     = "confluence_get_ticket_page"
	ToolTicketLookup      = "confluence_ticket_lookup"
	ToolSearchContributor = "confluence_search_contributor"
)

// Tool descriptions
const (
	DescSearchPages       = "Searches for pages in Confluence using CQL (Confluence Query Language)"
	DescGetTicketPage     = "Retrieves a specific Confluence page by ticket ID"
	DescTicketLookup      = "Retrieves context and relevant documentation for a given ticket ID from Confluence"
	DescSearchContributor = "Searches Confluence pages for an employee contributor by name or email"
)

const (
	outcomeOK          = "ok"
	outcomeEmpty       = "empty"
	outcomeError       = "error"
	outcomeConfigError = "config_error"
)

// Service wires the Confluence services behind the tool surface. Credentials are
// resolved once, at construction; when that fails every tool reports the
// configuration error and makes no network call.
type Service struct {
	client    *atlassian.Client
	search    *atlassian.SearchService
	tickets   *atlassian.TicketService
	config    *common.Config
	logger    arbor.ILogger
	metrics   *metrics.Metrics
	configErr error
}

// NewService resolves credentials and builds the Atlassian client and services.
// clientOpts are appended after the config-derived client options.
func NewService(
	ctx context.Context,
	config *common.Config,
	conns *connections.Service,
	logger arbor.ILogger,
	m *metrics.Metrics,
	clientOpts ...atlassian.ClientOption,
) *Service {
	s := &Service{
		config:  config,
		logger:  logger,
		metrics: m,
	}

	creds, err := conns.Resolve(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Confluence credentials unavailable; tools will report a configuration error")
		s.configErr = err
		return s
	}

	opts := []atlassian.ClientOption{
		atlassian.WithLogger(logger),
		atlassian.WithRateLimit(config.Atlassian.RateLimit),
		atlassian.WithTimeout(config.Atlassian.Timeout),
		atlassian.WithUserAgent(config.Atlassian.UserAgent),
		atlassian.WithMetrics(m),
	}
	client, err := atlassian.NewClient(creds, append(opts, clientOpts...)...)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create Atlassian client")
		s.configErr = err
		return s
	}

	s.client = client
	s.search = atlassian.NewSearchService(client, config.Search, logger, m)
	s.tickets = atlassian.NewTicketService(client, client, s.search, config.Ticket, logger, m)
	return s
}

// Err returns the configuration error captured at construction, if any
func (s *Service) Err() error {
	return s.configErr
}

// Search returns the search service, nil when credentials are missing
func (s *Service) Search() *atlassian.SearchService {
	return s.search
}

// Tickets returns the ticket service, nil when credentials are missing
func (s *Service) Tickets() *atlassian.TicketService {
	return s.tickets
}

// BaseURL returns the Confluence site URL, "" when credentials are missing
func (s *Service) BaseURL() string {
	if s.client == nil {
		return ""
	}
	return s.client.BaseURL()
}

// SearchPages searches Confluence pages for query and lists up to limit results
func (s *Service) SearchPages(ctx context.Context, query string, limit int) string {
	logger, done := s.begin(ToolSearchPages)
	if s.configErr != nil {
		return done(outcomeConfigError, ConfigErrorMessage(s.configErr))
	}

	docs, err := s.search.Search(ctx, query, limit, nil)
	if common.IsKind(err, common.KindValidation) {
		return done(outcomeError, "Error: "+Message(err))
	}
	if err != nil {
		logger.Warn().Err(err).Str("query", query).Msg("Search failed, reporting no results")
	}

	outcome := outcomeOK
	if len(docs) == 0 {
		outcome = outcomeEmpty
	}
	return done(outcome, FormatSearchReport(query, docs, s.config.Search.PreviewChars, s.config.Search.PreviewFormat))
}

// GetTicketPage returns the ticket page for ticketID
func (s *Service) GetTicketPage(ctx context.Context, ticketID string) string {
	logger, done := s.begin(ToolGetTicketPage)
	if s.configErr != nil {
		return done(outcomeConfigError, ConfigErrorMessage(s.configErr))
	}

	ticket, err := s.tickets.ResolveTicket(ctx, ticketID)
	if err != nil {
		if common.IsKind(err, common.KindValidation) {
			return done(outcomeError, "Error: "+Message(err))
		}
		logger.Info().Err(err).Str("ticket_id", ticketID).Msg("Ticket page not available")
		return done(outcomeEmpty, fmt.Sprintf("No page found for ticket ID: %s", ticketID))
	}

	return done(outcomeOK, FormatTicketPage(ticket, s.config.Search.PreviewFormat))
}

// TicketLookup returns the ticket summary and the pages that mention the ticket id
func (s *Service) TicketLookup(ctx context.Context, ticketID string) string {
	logger, done := s.begin(ToolTicketLookup)
	if s.configErr != nil {
		return done(outcomeConfigError, ConfigErrorMessage(s.configErr))
	}

	result, err := s.tickets.TicketContext(ctx, ticketID)
	if err != nil {
		if common.IsKind(err, common.KindValidation) {
			return done(outcomeError, "Error: "+Message(err))
		}
		logger.Info().Err(err).Str("ticket_id", ticketID).Msg("Ticket lookup failed")
		return done(outcomeEmpty, fmt.Sprintf("Failed to fetch ticket details for %s from %s.", ticketID, SourceName(s.config.Ticket.Source)))
	}
	if result.SearchErr != nil {
		logger.Warn().Err(result.SearchErr).Str("ticket_id", ticketID).Msg("Related page search failed")
	}

	return done(outcomeOK, FormatTicketContext(result, s.config.Search.PreviewFormat))
}

// SearchContributor lists pages mentioning identifier with snippets around each mention
func (s *Service) SearchContributor(ctx context.Context, identifier string, limit int) string {
	logger, done := s.begin(ToolSearchContributor)
	if s.configErr != nil {
		return done(outcomeConfigError, ConfigErrorMessage(s.configErr))
	}

	matches, err := s.search.SearchContributor(ctx, identifier, limit, -1)
	if common.IsKind(err, common.KindValidation) {
		return done(outcomeError, "Error: "+Message(err))
	}
	if err != nil {
		logger.Warn().Err(err).Str("identifier", identifier).Msg("Contributor search failed, reporting no matches")
	}

	outcome := outcomeOK
	if len(matches) == 0 {
		outcome = outcomeEmpty
	}
	return done(outcome, FormatContributorReport(identifier, matches))
}

// begin starts a tool call: it returns a logger carrying a fresh correlation id and a
// completion func that records the outcome and passes the text through.
func (s *Service) begin(tool string) (arbor.ILogger, func(outcome, text string) string) {
	start := time.Now()
	logger := s.logger.WithCorrelationId(uuid.New().String())
	logger.Debug().Str("tool", tool).Msg("Tool call started")

	return logger, func(outcome, text string) string {
		elapsed := time.Since(start)
		s.metrics.RecordToolCall(tool, outcome, elapsed)
		logger.Info().
			Str("tool", tool).
			Str("outcome", outcome).
			Int64("elapsed_ms", elapsed.Milliseconds()).
			Msg("Tool call completed")
		return text
	}
}

// ConfigErrorMessage renders a configuration error for a tool caller
func ConfigErrorMessage(err error) string {
	return "Error: Failed to get Confluence connection: " + Message(err)
}

// Message returns the innermost message of a typed error, without the operation prefix
func Message(err error) string {
	var e *common.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

// SourceName returns the display name of a ticket source
func SourceName(source string) string {
	if source == common.TicketSourceJira {
		return "Jira"
	}
	return "Confluence"
}
