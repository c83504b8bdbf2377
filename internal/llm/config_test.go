package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TaskAnalysis))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TaskHeadshot))
}

func TestGetModel_FallsBackToAnalysisModel(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[Task]string{TaskAnalysis: "analysis-model"}}
	assert.Equal(t, "analysis-model", config.GetModel(TaskHeadshot))

	empty := &Config{Provider: ProviderGemini, Models: map[Task]string{}}
	assert.Equal(t, "", empty.GetModel(TaskHeadshot))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()

	all := config.WithModel("custom-model")
	assert.Equal(t, "custom-model", all.GetModel(TaskAnalysis))
	assert.Equal(t, "custom-model", all.GetModel(TaskHeadshot))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TaskAnalysis), "original is not modified")

	one := config.WithModel("photo-model", TaskHeadshot)
	assert.Equal(t, "gemini-2.5-flash", one.GetModel(TaskAnalysis))
	assert.Equal(t, "photo-model", one.GetModel(TaskHeadshot))

	unchanged := config.WithModel("")
	assert.Equal(t, config.Models, unchanged.Models)
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Contains(t, err.Error(), "API Key is missing")
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "carrier-pigeon"}, "key")
	assert.Error(t, err)
}

func TestParts(t *testing.T) {
	assert.False(t, TextPart("hello").IsBlob())
	assert.True(t, BlobPart("image/png", []byte{0x89}).IsBlob())
	assert.Equal(t, float32(0.4), *Float32(0.4))
}
