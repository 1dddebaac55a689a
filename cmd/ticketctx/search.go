package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/services/tools"
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search Confluence pages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var contributorCmd = &cobra.Command{
	Use:   "contributor [name or email]",
	Short: "Find pages mentioning a contributor, with snippets",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContributor,
}

var pageCmd = &cobra.Command{
	Use:   "page [ticket id]",
	Short: "Show the page for a ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  runPage,
}

var (
	searchLimit      int
	searchExclude    []string
	contributorLimit int
	contextChars     int
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum pages to return (default from config: 5)")
	searchCmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "Numeric page ids to leave out")

	contributorCmd.Flags().IntVar(&contributorLimit, "limit", 0, "Maximum pages to scan (default from config: 20)")
	contributorCmd.Flags().IntVar(&contextChars, "context", -1, "Characters either side of each match (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")

	if outputFormat == "text" && len(searchExclude) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), application.Tools.SearchPages(cmd.Context(), term, searchLimit))
		return nil
	}

	if ok, err := requireConnection(cmd); !ok {
		return err
	}

	docs, err := application.Tools.Search().Search(cmd.Context(), term, searchLimit, searchExclude)
	if err != nil {
		return err
	}
	return printResult(cmd, docs, tools.FormatSearchReport(term, docs, config.Search.PreviewChars, config.Search.PreviewFormat))
}

func runContributor(cmd *cobra.Command, args []string) error {
	identifier := strings.Join(args, " ")

	if outputFormat == "text" && contextChars < 0 {
		fmt.Fprintln(cmd.OutOrStdout(), application.Tools.SearchContributor(cmd.Context(), identifier, contributorLimit))
		return nil
	}

	if ok, err := requireConnection(cmd); !ok {
		return err
	}

	matches, err := application.Tools.Search().SearchContributor(cmd.Context(), identifier, contributorLimit, contextChars)
	if err != nil {
		return err
	}
	return printResult(cmd, matches, tools.FormatContributorReport(identifier, matches))
}

func runPage(cmd *cobra.Command, args []string) error {
	if outputFormat == "text" {
		fmt.Fprintln(cmd.OutOrStdout(), application.Tools.GetTicketPage(cmd.Context(), args[0]))
		return nil
	}

	if err := application.Tools.Err(); err != nil {
		return err
	}

	ticket, err := application.Tools.Tickets().ResolveTicket(cmd.Context(), args[0])
	if common.IsKind(err, common.KindNotFound) {
		return fmt.Errorf("no page found for ticket ID: %s", args[0])
	}
	if err != nil {
		return err
	}
	return printResult(cmd, ticket, tools.FormatTicketPage(ticket, config.Search.PreviewFormat))
}
