package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mwt/signals/internal/broker"
	"github.com/mwt/signals/internal/conflict"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/marketdata"
	"github.com/mwt/signals/internal/reconcile"
	"github.com/mwt/signals/internal/runner"
	"github.com/mwt/signals/internal/scanner"
	"github.com/mwt/signals/internal/sink"
	"github.com/mwt/signals/internal/strategy"
	"github.com/mwt/signals/internal/universe"
	"github.com/mwt/signals/pkg/config"
	"github.com/mwt/signals/pkg/database"
	"github.com/mwt/signals/pkg/logger"
)

// scanWorkers is the universe scan concurrency; the provider rate
// limiter is the real throttle.
const scanWorkers = 8

// pipeline holds the assembled collaborators one command needs.
type pipeline struct {
	cfg    *config.Config
	log    *logger.Logger
	market *marketdata.Client
	runner *runner.Runner
	store  *sink.Store
	db     *database.DB
}

// buildPipeline loads config and wires the full daily pipeline.
func buildPipeline() (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{Level: level, Format: cfg.LogFormat})

	market := marketdata.NewClient(cfg.MarketData, log)
	universes := universe.NewProvider(cfg.MarketData, log)
	account := broker.NewClient(cfg.Broker, log)
	loc := cfg.ExchangeLocation()

	p := &pipeline{cfg: cfg, log: log, market: market}

	extraSinks := []contracts.OrderSink{}
	if cfg.Mail.Enabled {
		extraSinks = append(extraSinks, sink.NewMailer(cfg.Mail, log))
	}

	var snapshots runner.Snapshotter
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		p.db = db
		p.store = sink.NewStore(db, log)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		extraSinks = append(extraSinks, p.store)
		snapshots = p.store
	}

	p.runner = runner.New(runner.Options{
		Strategies: strategy.All(),
		Scanner:    scanner.New(market, universes, log, scanWorkers),
		Reconciler: reconcile.New(market, log, loc),
		Resolver:   conflict.New(log),
		Account:    account,
		Freshness:  market,
		OrderSink:  sink.NewCSVWriter(cfg.OutputDir, log),
		ExtraSinks: extraSinks,
		Snapshots:  snapshots,
	}, log)

	return p, nil
}

// Close releases pipeline resources.
func (p *pipeline) Close() {
	if p.db != nil {
		p.db.Close()
	}
}
