package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/cv-architect/internal/llm"
	"github.com/jonathan/cv-architect/internal/schemas"
	"github.com/jonathan/cv-architect/internal/types"
)

// Recorder persists successful analyses.
type Recorder interface {
	Append(ctx context.Context, result types.AnalysisResult, market types.Market) (types.HistoryItem, error)
}

// Notifier is told about every recorded analysis. Its errors never fail the analysis.
type Notifier interface {
	AnalysisCompleted(ctx context.Context, item types.HistoryItem) error
}

// Options configures an Orchestrator.
type Options struct {
	// APIKey is checked on every call; an empty key fails before any network call.
	APIKey   string
	Factory  llm.Factory
	History  Recorder
	Notifier Notifier
	Logger   *slog.Logger
	// Now is the clock used for timestamps; defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs the analysis pipeline: build, one model call, validate,
// parse, stamp, record.
type Orchestrator struct {
	apiKey    string
	factory   llm.Factory
	validator *schemas.Validator
	history   Recorder
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator. A missing API key is accepted here
// and reported on first use.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Factory == nil {
		opts.Factory = llm.NewFactory(llm.DefaultConfig())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	v, err := schemas.Analysis()
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis schema: %w", err)
	}

	return &Orchestrator{
		apiKey:    strings.TrimSpace(opts.APIKey),
		factory:   opts.Factory,
		validator: v,
		history:   opts.History,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Now,
	}, nil
}

// Analyze runs one analysis without recording it. Every error it returns is a *Failure.
func (o *Orchestrator) Analyze(ctx context.Context, req *types.AnalysisRequest) (*types.AnalysisResult, error) {
	built, err := BuildRequest(req)
	if err != nil {
		return nil, o.fail(err)
	}

	if o.apiKey == "" {
		return nil, o.fail(llm.ErrMissingAPIKey)
	}

	o.logger.Info("analysis started",
		"market", req.Market,
		"payload", req.CV.Kind(),
		"has_job_description", strings.TrimSpace(req.JobDescription) != "",
	)
	start := o.now()

	client, err := o.factory(ctx, o.apiKey)
	if err != nil {
		return nil, o.fail(err)
	}
	defer func() { _ = client.Close() }()

	raw, err := client.GenerateJSON(ctx, built)
	if err != nil {
		return nil, o.fail(err)
	}

	result, err := o.parse(raw)
	if err != nil {
		return nil, o.fail(err)
	}
	result.Timestamp = o.now().UnixMilli()

	o.logger.Info("analysis completed",
		"market", req.Market,
		"overall_score", result.Scores.Overall,
		"duration_ms", o.now().Sub(start).Milliseconds(),
	)
	return result, nil
}

// Submit analyzes req and appends the result to history. A history write
// failure is logged; the caller still receives the item.
func (o *Orchestrator) Submit(ctx context.Context, req *types.AnalysisRequest) (*types.HistoryItem, error) {
	result, err := o.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	item, err := o.record(ctx, *result, req.Market)
	if err != nil {
		return nil, o.fail(err)
	}

	if o.notifier != nil {
		if err := o.notifier.AnalysisCompleted(ctx, item); err != nil {
			o.logger.Warn("failed to publish analysis event", "id", item.ID, "error", err)
		}
	}
	return &item, nil
}

func (o *Orchestrator) record(ctx context.Context, result types.AnalysisResult, market types.Market) (types.HistoryItem, error) {
	if o.history != nil {
		item, err := o.history.Append(ctx, result, market)
		if err == nil {
			return item, nil
		}
		o.logger.Error("failed to persist history item", "error", err)
	}
	return types.NewHistoryItem(result, market, o.now())
}

// parse validates raw against the analysis schema before decoding it.
func (o *Orchestrator) parse(raw string) (*types.AnalysisResult, error) {
	if err := o.validator.Validate([]byte(raw)); err != nil {
		return nil, err
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	result.Normalize()
	return &result, nil
}

func (o *Orchestrator) fail(err error) *Failure {
	failure := Classify(err)
	o.logger.Warn("analysis failed", "kind", failure.Kind, "error", err)
	return failure
}
