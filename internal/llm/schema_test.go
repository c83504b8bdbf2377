package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	schemafiles "github.com/jonathan/cv-architect/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFromJSON_AnalysisSchema(t *testing.T) {
	schema, err := SchemaFromJSON(schemafiles.Analysis())
	require.NoError(t, err)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Contains(t, schema.Required, "jobTitleDetected")
	assert.NotContains(t, schema.Required, "rewrittenSummary")

	scores := schema.Properties["scores"]
	require.NotNil(t, scores)
	assert.Equal(t, genai.TypeInteger, scores.Properties["overallScore"].Type)

	sections := schema.Properties["sectionAnalysis"]
	require.NotNil(t, sections)
	assert.Equal(t, genai.TypeArray, sections.Type)
	assert.Equal(t, []string{"good", "warning", "critical", "missing"}, sections.Items.Properties["status"].Enum)

	projects := schema.Properties["projectIdeas"].Items
	assert.Equal(t, []string{"Beginner", "Intermediate", "Advanced"}, projects.Properties["difficulty"].Enum)
	assert.Equal(t, genai.TypeString, projects.Properties["techStack"].Items.Type)
}

func TestSchemaFromJSON_HeadshotSchema(t *testing.T) {
	schema, err := SchemaFromJSON(schemafiles.Headshot())
	require.NoError(t, err)

	assert.Len(t, schema.Required, 7)
	assert.Equal(t, genai.TypeArray, schema.Properties["tips"].Type)
}

func TestSchemaFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{"malformed", `{"type": `},
		{"unsupported type", `{"type": "null"}`},
		{"nested unsupported type", `{"type": "object", "properties": {"x": {"type": "date"}}}`},
		{"missing type", `{"description": "untyped"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SchemaFromJSON(tt.document)
			assert.Error(t, err)
		})
	}
}
