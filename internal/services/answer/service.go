// Package answer turns retrieved Confluence pages and a ticket into a model prompt
// and returns the model's answer.
package answer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/ternarybob/arbor"
	"github.com/tmc/langchaingo/prompts"
	"github.com/yuin/goldmark"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/models"
	"github.com/ternarybob/ticketctx/internal/services/atlassian"
	"github.com/ternarybob/ticketctx/internal/services/llm"
)

// NoRelevantPagesMessage is returned instead of calling the model when there is no context
const NoRelevantPagesMessage = "No relevant Confluence pages found to answer this query."

const promptTemplate = `You are a helpful assistant assisting a user with a Jira ticket.
Use the following pieces of retrieved context from Confluence pages to answer the question.
If you don't know the answer, just say that you don't know.

Context:
{{.context}}

Ticket Summary: {{.ticket_summary}}
Ticket Description: {{.ticket_description}}

Question: {{.question}}

Answer:`

// Generator produces model text for a request. *llm.ProviderFactory implements it.
type Generator interface {
	GenerateContent(ctx context.Context, request *llm.ContentRequest) (*llm.ContentResponse, error)
}

var _ Generator = (*llm.ProviderFactory)(nil)

// Service answers questions about a ticket from retrieved pages
type Service struct {
	generator Generator
	config    common.AnswerConfig
	baseURL   string
	prompt    prompts.PromptTemplate
	logger    arbor.ILogger
}

// NewService creates an answer service. baseURL resolves relative links when page
// bodies are converted to markdown.
func NewService(generator Generator, config common.AnswerConfig, baseURL string, logger arbor.ILogger) *Service {
	return &Service{
		generator: generator,
		config:    config,
		baseURL:   baseURL,
		prompt: prompts.NewPromptTemplate(promptTemplate, []string{
			"context", "ticket_summary", "ticket_description", "question",
		}),
		logger: logger,
	}
}

// FormatContext joins documents into labeled blocks separated by a blank line:
//
//	--- Page: <title> ---
//	<body>
func (s *Service) FormatContext(docs []*models.SearchResult) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		body := doc.Body
		if s.config.ContextFormat != "raw" {
			body = atlassian.ConvertHTMLToMarkdown(doc.Body, s.baseURL, s.logger)
		}
		blocks = append(blocks, fmt.Sprintf("--- Page: %s ---\n%s", doc.Title, body))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt renders the answer prompt for a question, ticket and documents
func (s *Service) BuildPrompt(question string, ticket *models.Ticket, docs []*models.SearchResult) (string, error) {
	var summary, description string
	if ticket != nil {
		summary = ticket.Summary
		description = ticket.Description
		if s.config.ContextFormat != "raw" {
			description = atlassian.ConvertHTMLToMarkdown(description, s.baseURL, s.logger)
		}
	}

	prompt, err := s.prompt.Format(map[string]any{
		"context":            s.FormatContext(docs),
		"ticket_summary":     summary,
		"ticket_description": description,
		"question":           question,
	})
	if err != nil {
		return "", common.Errorf(common.KindValidation, "answer.prompt", "failed to render prompt: %w", err)
	}
	return prompt, nil
}

// Answer asks the model question about the ticket using docs as context and
// returns its text verbatim. Without documents the model is not called and
// NoRelevantPagesMessage is returned.
func (s *Service) Answer(ctx context.Context, question string, ticket *models.Ticket, docs []*models.SearchResult) (string, error) {
	if len(docs) == 0 {
		return NoRelevantPagesMessage, nil
	}

	prompt, err := s.BuildPrompt(question, ticket, docs)
	if err != nil {
		return "", err
	}

	s.logger.Debug().
		Int("documents", len(docs)).
		Int("prompt_length", len(prompt)).
		Str("model", s.config.Model).
		Msg("Requesting answer")

	resp, err := s.generator.GenerateContent(ctx, &llm.ContentRequest{
		Messages:    []interfaces.Message{{Role: "user", Content: prompt}},
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Answer generation failed")
		return "", err
	}

	s.logger.Info().
		Str("provider", string(resp.Provider)).
		Str("model", resp.Model).
		Int("answer_length", len(resp.Text)).
		Msg("Answer generated")

	return resp.Text, nil
}

// RenderHTML converts a markdown answer to sanitized HTML
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return bluemonday.UGCPolicy().Sanitize(buf.String()), nil
}
