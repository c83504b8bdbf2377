// Package headshot analyzes profile photos. It is independent of the CV
// pipeline and never writes to history.
package headshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/llm"
	"github.com/jonathan/cv-architect/internal/prompts"
	"github.com/jonathan/cv-architect/internal/schemas"
	"github.com/jonathan/cv-architect/internal/types"
	schemafiles "github.com/jonathan/cv-architect/schemas"
)

// FailureMessage is the single message shown for any headshot failure.
const FailureMessage = "Failed to analyze photo"

// MessageNotAnImage is shown when the upload is not a supported image.
const MessageNotAnImage = "Please upload a JPEG, PNG, or WEBP photo."

// Analyzer runs headshot analyses.
type Analyzer struct {
	apiKey    string
	factory   llm.Factory
	validator *schemas.Validator
	logger    *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil factory uses the default Gemini config.
func NewAnalyzer(apiKey string, factory llm.Factory, logger *slog.Logger) (*Analyzer, error) {
	if factory == nil {
		factory = llm.NewFactory(llm.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	v, err := schemas.Headshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load headshot schema: %w", err)
	}
	return &Analyzer{
		apiKey:    strings.TrimSpace(apiKey),
		factory:   factory,
		validator: v,
		logger:    logger,
	}, nil
}

// BuildRequest builds the single model request for a photo.
func BuildRequest(image []byte, mimeType string) (*llm.Request, error) {
	prompt, err := prompts.Get(prompts.HeadshotFile, "analyze-headshot")
	if err != nil {
		return nil, err
	}
	return &llm.Request{
		Task:           llm.TaskHeadshot,
		ResponseSchema: schemafiles.Headshot(),
		Parts: []llm.Part{
			llm.TextPart(prompt),
			llm.BlobPart(mimeType, image),
		},
	}, nil
}

// Analyze sends one photo to the model. Errors are *analysis.Failure values
// carrying the classified kind but the generic headshot message, except for
// uploads that are not images.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*types.HeadshotAnalysis, error) {
	resolved, ok := ingestion.DetectImageType(image, mimeType)
	if !ok {
		return nil, analysis.InputFailure(MessageNotAnImage, nil)
	}
	if len(image) > ingestion.MaxFileSize {
		return nil, analysis.InputFailure(ingestion.ErrFileTooLarge.Error(), ingestion.ErrFileTooLarge)
	}
	if a.apiKey == "" {
		return nil, a.fail(llm.ErrMissingAPIKey)
	}

	req, err := BuildRequest(image, resolved)
	if err != nil {
		return nil, a.fail(err)
	}

	client, err := a.factory(ctx, a.apiKey)
	if err != nil {
		return nil, a.fail(err)
	}
	defer func() { _ = client.Close() }()

	raw, err := client.GenerateJSON(ctx, req)
	if err != nil {
		return nil, a.fail(err)
	}
	if err := a.validator.Validate([]byte(raw)); err != nil {
		return nil, a.fail(err)
	}

	var result types.HeadshotAnalysis
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, a.fail(err)
	}
	if result.Tips == nil {
		result.Tips = []string{}
	}

	a.logger.Info("headshot analyzed", "mime_type", resolved, "score", result.Score)
	return &result, nil
}

func (a *Analyzer) fail(err error) *analysis.Failure {
	classified := analysis.Classify(err)
	a.logger.Warn("headshot analysis failed", "kind", classified.Kind, "error", err)
	return &analysis.Failure{Kind: classified.Kind, Message: FailureMessage, Cause: err}
}
