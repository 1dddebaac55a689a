package atlassian

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/metrics"
	"github.com/ternarybob/ticketctx/internal/models"
)

// SearchService searches Confluence pages and fetches their bodies
type SearchService struct {
	client  interfaces.ConfluenceClient
	config  common.SearchConfig
	logger  arbor.ILogger
	metrics *metrics.Metrics
}

// NewSearchService creates a search service. m may be nil.
func NewSearchService(client interfaces.ConfluenceClient, config common.SearchConfig, logger arbor.ILogger, m *metrics.Metrics) *SearchService {
	return &SearchService{
		client:  client,
		config:  config,
		logger:  logger,
		metrics: m,
	}
}

// Search runs a site search for term restricted to pages and fetches the body of
// every hit, in search order, capped at limit (config default when limit <= 0).
//
// Any failure degrades to an empty result. The typed error is returned alongside
// so callers can tell a transport failure from an empty search.
func (s *SearchService) Search(ctx context.Context, term string, limit int, excludeIDs []string) ([]*models.SearchResult, error) {
	if term == "" {
		return []*models.SearchResult{}, common.Errorf(common.KindValidation, "search", "search term is required")
	}
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	cql, err := BuildSearchFilter(Fragment(term), excludeIDs)
	if err != nil {
		return []*models.SearchResult{}, err
	}

	results, err := s.fetchAll(ctx, cql, limit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("term", term).
			Str("kind", string(common.KindOf(err))).
			Msg("Error searching Confluence")
		return []*models.SearchResult{}, err
	}

	s.logger.Debug().
		Str("term", term).
		Int("limit", limit).
		Int("results", len(results)).
		Msg("Confluence search completed")

	return results, nil
}

// SearchContributor finds pages mentioning identifier and extracts a snippet around
// each occurrence. Pages where the identifier does not occur in the text are dropped.
// limit <= 0 and contextChars < 0 fall back to the configured defaults.
func (s *SearchService) SearchContributor(ctx context.Context, identifier string, limit int, contextChars int) ([]*models.ContributorMatch, error) {
	if identifier == "" {
		return []*models.ContributorMatch{}, common.Errorf(common.KindValidation, "search.contributor", "identifier is required")
	}
	if limit <= 0 {
		limit = s.config.ContributorLimit
	}
	if contextChars < 0 {
		contextChars = s.config.ContextChars
	}

	cql, err := BuildSearchFilter(Fragment(identifier), nil)
	if err != nil {
		return []*models.ContributorMatch{}, err
	}

	pages, err := s.fetchAll(ctx, cql, limit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("identifier", identifier).
			Msg("Error searching for contributor")
		return []*models.ContributorMatch{}, err
	}

	matches := make([]*models.ContributorMatch, 0, len(pages))
	snippetCount := 0
	for _, page := range pages {
		snippets := ExtractSnippets(page.Body, identifier, contextChars)
		if len(snippets) == 0 {
			continue
		}
		snippetCount += len(snippets)
		matches = append(matches, &models.ContributorMatch{
			PageID:    page.PageID,
			Title:     page.Title,
			SourceURL: page.SourceURL,
			Matches:   snippets,
		})
	}

	s.metrics.AddSnippetsFound(snippetCount)

	s.logger.Debug().
		Str("identifier", identifier).
		Int("pages", len(pages)).
		Int("matched_pages", len(matches)).
		Int("snippets", snippetCount).
		Msg("Contributor search completed")

	return matches, nil
}

// fetchAll issues the CQL search then fetches each hit's body sequentially
func (s *SearchService) fetchAll(ctx context.Context, cql string, limit int) ([]*models.SearchResult, error) {
	hits, err := s.client.SearchCQL(ctx, cql, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		title, body, err := s.client.FetchPageBody(ctx, hit.ID)
		if err != nil {
			return nil, err
		}
		if hit.Title != "" {
			title = hit.Title
		}
		results = append(results, &models.SearchResult{
			PageID:    hit.ID,
			Title:     title,
			SourceURL: hit.WebUI,
			Body:      body,
		})
	}

	return results, nil
}
