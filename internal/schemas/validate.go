// Package schemas provides JSON Schema validation of structured AI responses.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	schemafiles "github.com/jonathan/cv-architect/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Schema != "" {
		sb.WriteString(fmt.Sprintf("validation against %s failed:\n", ve.Schema))
	} else {
		sb.WriteString("validation failed:\n")
	}
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Fields returns the failing field paths in report order.
func (ve *ValidationError) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

// Validator checks documents against one compiled schema.
type Validator struct {
	name   string
	schema *gojsonschema.Schema
}

// NewValidator compiles schemaContent under the given name.
func NewValidator(name, schemaContent string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return nil, &SchemaLoadError{
			Name:    name,
			Message: "schema compilation failed",
			Cause:   err,
		}
	}
	return &Validator{name: name, schema: schema}, nil
}

// Name returns the schema name the validator was built from.
func (v *Validator) Name() string {
	return v.name
}

// Validate checks a raw JSON document. Unparseable JSON is reported as a
// ValidationError on the root so callers see one error type for bad output.
func (v *Validator) Validate(document []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &ValidationError{
			Schema: v.name,
			Errors: []FieldError{{Field: "(root)", Message: err.Error()}},
		}
	}
	return toValidationError(v.name, result)
}

var (
	analysisOnce      sync.Once
	analysisValidator *Validator
	analysisErr       error

	headshotOnce      sync.Once
	headshotValidator *Validator
	headshotErr       error
)

// Analysis returns the shared validator for analysis results.
func Analysis() (*Validator, error) {
	analysisOnce.Do(func() {
		content, err := schemafiles.Load(schemafiles.AnalysisFile)
		if err != nil {
			analysisErr = &SchemaLoadError{Name: schemafiles.AnalysisFile, Message: "not embedded", Cause: err}
			return
		}
		analysisValidator, analysisErr = NewValidator(schemafiles.AnalysisFile, content)
	})
	return analysisValidator, analysisErr
}

// Headshot returns the shared validator for headshot analyses.
func Headshot() (*Validator, error) {
	headshotOnce.Do(func() {
		content, err := schemafiles.Load(schemafiles.HeadshotFile)
		if err != nil {
			headshotErr = &SchemaLoadError{Name: schemafiles.HeadshotFile, Message: "not embedded", Cause: err}
			return
		}
		headshotValidator, headshotErr = NewValidator(schemafiles.HeadshotFile, content)
	})
	return headshotValidator, headshotErr
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Name:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return toValidationError("", result)
}

func toValidationError(name string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
