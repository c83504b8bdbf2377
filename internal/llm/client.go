package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrMissingAPIKey is returned when a client is requested without a credential.
var ErrMissingAPIKey = errors.New("API Key is missing")

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("no response from AI")

// Part is one piece of request content: text, or inline binary data with its MIME type.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// BlobPart builds an inline binary part.
func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsBlob reports whether the part carries inline binary data.
func (p Part) IsBlob() bool {
	return len(p.Data) > 0
}

// Request is a single structured generation call.
type Request struct {
	Task              Task
	SystemInstruction string
	// Temperature is left to the provider default when nil.
	Temperature *float32
	// ResponseSchema is a JSON Schema document constraining the JSON output.
	ResponseSchema string
	Parts          []Part
}

// Float32 returns a pointer to v, for Request.Temperature.
func Float32(v float32) *float32 {
	return &v
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateJSON issues exactly one call and returns the raw JSON text of the answer.
	GenerateJSON(ctx context.Context, req *Request) (string, error)
	// GetModel returns the underlying provider model for a task
	GetModel(task Task) string
	// Close releases any resources held by the client
	Close() error
}

// Factory builds a client on demand. The analysis pipeline creates clients
// per call so a missing credential is a request-time failure.
type Factory func(ctx context.Context, apiKey string) (Client, error)

// NewFactory returns a Factory bound to config.
func NewFactory(config *Config) Factory {
	return func(ctx context.Context, apiKey string) (Client, error) {
		return NewClient(ctx, config, apiKey)
	}
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateJSON generates JSON content constrained by the request schema
func (c *GeminiClient) GenerateJSON(ctx context.Context, req *Request) (string, error) {
	modelName := c.config.GetModel(req.Task)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for task %s", req.Task)
	}

	model := c.client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	if req.ResponseSchema != "" {
		schema, err := SchemaFromJSON(req.ResponseSchema)
		if err != nil {
			return "", fmt.Errorf("invalid response schema: %w", err)
		}
		model.ResponseSchema = schema
	}

	resp, err := model.GenerateContent(ctx, toGenaiParts(req.Parts)...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a task
func (c *GeminiClient) GetModel(task Task) string {
	return c.config.GetModel(task)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func toGenaiParts(parts []Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsBlob() {
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content", ErrEmptyResponse)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	joined := strings.TrimSpace(strings.Join(parts, ""))
	if joined == "" {
		return "", fmt.Errorf("%w: no text parts", ErrEmptyResponse)
	}

	return joined, nil
}
