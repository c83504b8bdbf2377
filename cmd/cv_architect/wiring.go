package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/app"
	"github.com/jonathan/cv-architect/internal/config"
	"github.com/jonathan/cv-architect/internal/events"
	"github.com/jonathan/cv-architect/internal/headshot"
	"github.com/jonathan/cv-architect/internal/history"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/llm"
	"github.com/jonathan/cv-architect/internal/rendering"
)

// notifier publishes analysis events and owns a broker connection.
type notifier interface {
	analysis.Notifier
	Close() error
}

// pipeline is everything an analysis needs, built from the settings.
type pipeline struct {
	store        *history.Store
	notifier     notifier
	orchestrator *analysis.Orchestrator
	headshots    *headshot.Analyzer
	controller   *app.Controller
	pdf          *rendering.PDFConverter
}

// openStore opens the configured history backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*history.Store, error) {
	backend, err := history.Open(ctx, cfg.HistorySettings(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return history.NewStore(backend, history.WithLogger(logger)), nil
}

// openNotifier connects to the broker when one is configured. A broker that
// cannot be reached only disables events.
func openNotifier(cfg *config.Config, logger *slog.Logger) notifier {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		logger.Warn("analysis events disabled", "error", err)
		return events.Nop{}
	}
	return publisher
}

func modelFactory(cfg *config.Config) llm.Factory {
	return llm.NewFactory(llm.DefaultConfig().WithModel(cfg.Model))
}

// newPipeline wires the store, both AI pipelines and the controller.
func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	n := openNotifier(cfg, logger)
	factory := modelFactory(cfg)

	orchestrator, err := analysis.NewOrchestrator(analysis.Options{
		APIKey:   cfg.APIKey,
		Factory:  factory,
		History:  store,
		Notifier: n,
		Logger:   logger,
	})
	if err != nil {
		_ = n.Close()
		_ = store.Close()
		return nil, err
	}
	headshots, err := headshot.NewAnalyzer(cfg.APIKey, factory, logger)
	if err != nil {
		_ = n.Close()
		_ = store.Close()
		return nil, err
	}

	normalizer := ingestion.NewNormalizer()
	normalizer.Logger = logger

	controller := app.New(app.Options{
		Analyzer:   orchestrator,
		Headshots:  headshots,
		History:    store,
		Normalizer: normalizer,
		Market:     cfg.DefaultMarket(),
		Logger:     logger,
	})
	controller.Refresh(ctx)

	return &pipeline{
		store:        store,
		notifier:     n,
		orchestrator: orchestrator,
		headshots:    headshots,
		controller:   controller,
		pdf:          rendering.NewPDFConverter(cfg.ChromePath, logger),
	}, nil
}

func (p *pipeline) Close() {
	_ = p.notifier.Close()
	_ = p.store.Close()
}

// jobFetcher reads job descriptions from URLs with the configured browser fallback.
func jobFetcher(cfg *config.Config, logger *slog.Logger) func(ctx context.Context, url string) (string, error) {
	return func(ctx context.Context, url string) (string, error) {
		text, _, err := ingestion.JobDescriptionFromURL(ctx, url, ingestion.URLOptions{
			UseBrowser:     cfg.UseBrowser,
			ChromePath:     cfg.ChromePath,
			BrowserTimeout: 30 * time.Second,
			Logger:         logger,
		})
		return text, err
	}
}
