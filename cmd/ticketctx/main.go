// Package main is the entry point for the ticketctx CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/app"
	"github.com/ternarybob/ticketctx/internal/common"
)

var (
	// Command-line flags
	configFiles  []string
	logLevel     string
	ticketSource string
	outputFormat string

	// Global state
	config      *common.Config
	logger      arbor.ILogger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "ticketctx",
	Short: "Retrieve Confluence context for tickets",
	Long: `ticketctx looks up a ticket in Confluence (or Jira), finds the wiki pages that
mention it and optionally answers a question about it with an LLM. The same
lookups are served to assistants by ticketctx-mcp.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("invalid --output %q (expected text, json or yaml)", outputFormat)
		}

		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		// Auto-discover config file if not specified
		if len(configFiles) == 0 {
			if _, err := os.Stat("ticketctx.toml"); err == nil {
				configFiles = append(configFiles, "ticketctx.toml")
			}
		}

		var err error
		config, err = common.LoadFromFiles(configFiles...)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		common.ApplyFlagOverrides(config, ticketSource, logLevel)

		logger = common.InitLogger(config)

		application, err = app.New(cmd.Context(), config, logger, prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&ticketSource, "ticket-source", "", "Ticket source: confluence or jira (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")

	rootCmd.AddCommand(ticketCmd, pageCmd, searchCmd, contributorCmd, askCmd, connectionCmd, versionCmd)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())

	if application != nil {
		if closeErr := application.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", closeErr)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}
