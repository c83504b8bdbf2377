package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0, "maximum": 150},
		"role": {"type": "string", "enum": ["admin", "user"]}
	},
	"required": ["name", "age"]
}`

func TestValidateJSONString(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantError bool
	}{
		{"valid", `{"name": "Ada", "age": 36, "role": "admin"}`, false},
		{"whole float counts as integer", `{"name": "Ada", "age": 36.0}`, false},
		{"missing required field", `{"name": "Ada"}`, true},
		{"wrong type", `{"name": "Ada", "age": "old"}`, true},
		{"enum violation", `{"name": "Ada", "age": 36, "role": "root"}`, true},
		{"out of range", `{"name": "Ada", "age": 151}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONString(personSchema, tt.document)
			if tt.wantError {
				require.Error(t, err)
				var validationErr *ValidationError
				require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
				assert.Greater(t, len(validationErr.Errors), 0)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateJSONString_InvalidSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 42}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidator_ReportsFieldPaths(t *testing.T) {
	v, err := NewValidator("person", personSchema)
	require.NoError(t, err)
	assert.Equal(t, "person", v.Name())

	err = v.Validate([]byte(`{"name": "Ada", "age": 36, "role": "root"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "person", validationErr.Schema)
	assert.Contains(t, validationErr.Fields(), "role")
	assert.Contains(t, err.Error(), "validation against person failed")
}

func TestValidator_MalformedDocument(t *testing.T) {
	v, err := NewValidator("person", personSchema)
	require.NoError(t, err)

	err = v.Validate([]byte(`{ invalid json }`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"(root)"}, validationErr.Fields())
}

func TestNewValidator_InvalidSchema(t *testing.T) {
	_, err := NewValidator("broken", `{"type": "nope"}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "broken", loadErr.Name)
}

func TestEmbeddedValidators(t *testing.T) {
	analysis, err := Analysis()
	require.NoError(t, err)
	assert.Equal(t, "analysis.schema.json", analysis.Name())

	headshot, err := Headshot()
	require.NoError(t, err)

	err = headshot.Validate([]byte(`{"score": 80, "professionalism": "p", "lighting": "l",
		"background": "b", "attire": "a", "expression": "e", "tips": ["t"]}`))
	assert.NoError(t, err)

	err = headshot.Validate([]byte(`{"score": 80}`))
	assert.Error(t, err)
}
