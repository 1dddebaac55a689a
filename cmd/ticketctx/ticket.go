package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/ticketctx/internal/models"
	"github.com/ternarybob/ticketctx/internal/services/tools"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Show a ticket and the pages that mention it",
	Long: `Resolves the ticket, searches Confluence for its id and lists the pages whose
body contains the id verbatim. With --query, the pages are also used to answer
the question with the configured LLM; the context is printed even when no
answer can be produced.`,
	Args: cobra.NoArgs,
	RunE: runTicket,
}

var (
	ticketID    string
	ticketQuery string
)

type ticketOutput struct {
	Ticket      *models.Ticket         `json:"ticket" yaml:"ticket"`
	Query       string                 `json:"query" yaml:"query"`
	Documents   []*models.SearchResult `json:"documents" yaml:"documents"`
	Dropped     int                    `json:"dropped" yaml:"dropped"`
	Answer      string                 `json:"answer,omitempty" yaml:"answer,omitempty"`
	AnswerError string                 `json:"answer_error,omitempty" yaml:"answer_error,omitempty"`
}

func init() {
	ticketCmd.Flags().StringVar(&ticketID, "ticket", "", "Ticket ID (e.g. NB_0001)")
	ticketCmd.Flags().StringVar(&ticketQuery, "query", "", "Question to answer from the related pages")
	_ = ticketCmd.MarkFlagRequired("ticket")
}

func runTicket(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	source := tools.SourceName(config.Ticket.Source)

	if outputFormat == "text" {
		fmt.Fprintf(out, "Fetching ticket details for %s from %s...\n", ticketID, source)
	}

	if ok, err := requireConnection(cmd); !ok {
		return err
	}

	result, err := application.Tools.Tickets().TicketContext(ctx, ticketID)
	if err != nil {
		if outputFormat != "text" {
			return err
		}
		logger.Debug().Err(err).Str("ticket_id", ticketID).Msg("Ticket lookup failed")
		fmt.Fprintf(out, "Failed to fetch ticket details for %s from %s.\n", ticketID, source)
		return nil
	}
	if result.SearchErr != nil {
		logger.Warn().Err(result.SearchErr).Str("ticket_id", ticketID).Msg("Related page search failed")
	}

	text := tools.FormatTicketContext(result, config.Search.PreviewFormat)
	output := ticketOutput{
		Ticket:    result.Ticket,
		Query:     result.Query,
		Documents: result.Documents,
		Dropped:   result.Dropped,
	}

	if ticketQuery != "" {
		answer, err := application.Answer.Answer(ctx, ticketQuery, result.Ticket, result.Documents)
		if err != nil {
			logger.Warn().Err(err).Str("ticket_id", ticketID).Msg("Answer unavailable, printing context only")
			output.AnswerError = tools.Message(err)
			text += "\n\nAnswer unavailable: " + output.AnswerError
		} else {
			output.Answer = answer
			text += "\n\n=== Answer ===\n" + answer
		}
	}

	return printResult(cmd, output, text)
}
