package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/metrics"
	"github.com/ternarybob/ticketctx/internal/services/answer"
	"github.com/ternarybob/ticketctx/internal/services/atlassian"
	"github.com/ternarybob/ticketctx/internal/services/connections"
	"github.com/ternarybob/ticketctx/internal/services/llm"
	"github.com/ternarybob/ticketctx/internal/services/tools"
	"github.com/ternarybob/ticketctx/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Metrics *metrics.Metrics

	// Stored connection (nil when the database could not be opened)
	ConnectionStorage interfaces.ConnectionStorage
	Connections       *connections.Service

	// Tool surface and question answering
	Tools  *tools.Service
	LLM    *llm.ProviderFactory
	Answer *answer.Service
}

// New wires the application. A database that cannot be opened is not fatal:
// credentials then come from the environment and the config file only.
// Missing credentials are not fatal either; they surface through Tools.Err.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger, reg prometheus.Registerer, clientOpts ...atlassian.ClientOption) (*App, error) {
	if cfg == nil {
		return nil, common.Errorf(common.KindConfiguration, "app.new", "config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewMetrics(reg),
	}

	app.initDatabase()

	app.Connections = connections.NewService(app.ConnectionStorage, cfg.Atlassian, logger)
	app.Tools = tools.NewService(ctx, cfg, app.Connections, logger, app.Metrics, clientOpts...)

	app.LLM = llm.NewProviderFactory(cfg, logger)
	app.Answer = answer.NewService(app.LLM, cfg.Answer, app.Tools.BaseURL(), logger)

	logger.Debug().
		Str("ticket_source", cfg.Ticket.Source).
		Str("connection", cfg.Atlassian.Connection).
		Bool("credentials", app.Tools.Err() == nil).
		Str("llm", app.LLM.String()).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initDatabase() {
	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		a.Logger.Warn().
			Err(err).
			Str("path", a.Config.Storage.Badger.Path).
			Msg("Connection store unavailable, using environment and config credentials only")
		return
	}
	a.ConnectionStorage = badger.NewConnectionStorage(db, a.Logger)
}

// Close releases the LLM clients and the connection store
func (a *App) Close() error {
	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM clients")
		}
	}

	if a.ConnectionStorage != nil {
		if err := a.ConnectionStorage.Close(); err != nil {
			return fmt.Errorf("failed to close connection store: %w", err)
		}
	}

	return nil
}
