package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/app"
	"github.com/ternarybob/ticketctx/internal/common"
)

func main() {
	// Load configuration
	var configFiles []string
	if configPath := os.Getenv("TICKETCTX_CONFIG"); configPath != "" {
		configFiles = append(configFiles, configPath)
	} else if _, err := os.Stat("ticketctx.toml"); err == nil {
		configFiles = append(configFiles, "ticketctx.toml")
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	configureLogging(config)
	logger := common.InitLogger(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, config, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Credentials are resolved once; tools report the error on every call
	if err := application.Tools.Err(); err != nil {
		logger.Warn().Err(err).Msg("Confluence connection not configured")
	}

	mcpServer := server.NewMCPServer(
		"ticketctx",
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	svc := application.Tools
	mcpServer.AddTool(createSearchPagesTool(), handleSearchPages(svc))
	mcpServer.AddTool(createGetTicketPageTool(), handleGetTicketPage(svc))
	mcpServer.AddTool(createTicketLookupTool(), handleTicketLookup(svc))
	mcpServer.AddTool(createSearchContributorTool(), handleSearchContributor(svc))

	if config.MCP.HTTPAddr == "" {
		// Start server (blocks on stdio)
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Fatal().Err(err).Msg("MCP server failed")
		}
		return
	}

	if err := serveHTTP(ctx, config.MCP.HTTPAddr, mcpServer, logger); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}

// configureLogging keeps stdout clean in stdio mode, where it carries the MCP protocol:
// logs go to the file writer only and the default info level is quietened to warn.
// HTTP mode keeps the configured outputs and level.
func configureLogging(config *common.Config) {
	if config.MCP.HTTPAddr != "" {
		return
	}
	config.Logging.Output = []string{"file"}
	if config.Logging.Level == "info" {
		config.Logging.Level = "warn"
	}
}

// serveHTTP serves the tools over streamable HTTP at /mcp and Prometheus metrics at /metrics
func serveHTTP(ctx context.Context, addr string, mcpServer *server.MCPServer, logger arbor.ILogger) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpServer))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info().Str("addr", addr).Msg("Serving MCP over HTTP")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
