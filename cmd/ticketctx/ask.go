package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ternarybob/ticketctx/internal/models"
	"github.com/ternarybob/ticketctx/internal/services/answer"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from Confluence pages",
	Long: `Answers a question with the configured LLM. With --ticket, the ticket and the
pages that mention it are the context; otherwise the question text is searched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askTicket string
	askLimit  int
	askHTML   bool
)

type askOutput struct {
	Question string                 `json:"question" yaml:"question"`
	Ticket   *models.Ticket         `json:"ticket,omitempty" yaml:"ticket,omitempty"`
	Sources  []*models.SearchResult `json:"sources" yaml:"sources"`
	Answer   string                 `json:"answer" yaml:"answer"`
}

func init() {
	askCmd.Flags().StringVar(&askTicket, "ticket", "", "Ticket ID used as context")
	askCmd.Flags().IntVar(&askLimit, "limit", 0, "Maximum pages used as context (default from config: 5)")
	askCmd.Flags().BoolVar(&askHTML, "html", false, "Render the answer as sanitized HTML")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	if ok, err := requireConnection(cmd); !ok {
		return err
	}

	output := askOutput{Question: question}

	if askTicket != "" {
		result, err := application.Tools.Tickets().TicketContext(ctx, askTicket)
		if err != nil {
			return fmt.Errorf("failed to fetch ticket details for %s: %w", askTicket, err)
		}
		output.Ticket = result.Ticket
		output.Sources = result.Documents
	} else {
		docs, err := application.Tools.Search().Search(ctx, question, askLimit, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("Search failed, answering without context")
		}
		output.Sources = docs
	}

	text, err := application.Answer.Answer(ctx, question, output.Ticket, output.Sources)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	if askHTML {
		text, err = answer.RenderHTML(text)
		if err != nil {
			return err
		}
	}
	output.Answer = text

	return printResult(cmd, output, text)
}
