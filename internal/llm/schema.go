// Package llm - schema.go converts JSON Schema documents into Gemini response schemas.
package llm

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchemaNode is the subset of JSON Schema the Gemini response schema can express.
type jsonSchemaNode struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description"`
	Enum        []string                   `json:"enum"`
	Items       *jsonSchemaNode            `json:"items"`
	Properties  map[string]*jsonSchemaNode `json:"properties"`
	Required    []string                   `json:"required"`
}

// SchemaFromJSON converts a JSON Schema document into a *genai.Schema.
// Keywords Gemini does not support (ranges, $schema, titles) are dropped;
// they are still enforced when the response is validated locally.
func SchemaFromJSON(document string) (*genai.Schema, error) {
	var root jsonSchemaNode
	if err := json.Unmarshal([]byte(document), &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON schema: %w", err)
	}
	return convertNode(&root, "(root)")
}

func convertNode(node *jsonSchemaNode, path string) (*genai.Schema, error) {
	typ, err := genaiType(node.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	schema := &genai.Schema{
		Type:        typ,
		Description: node.Description,
		Enum:        node.Enum,
		Required:    node.Required,
	}

	if node.Items != nil {
		items, err := convertNode(node.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		schema.Items = items
	}

	if len(node.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(node.Properties))
		for name, prop := range node.Properties {
			converted, err := convertNode(prop, path+"."+name)
			if err != nil {
				return nil, err
			}
			schema.Properties[name] = converted
		}
	}

	return schema, nil
}

func genaiType(t string) (genai.Type, error) {
	switch t {
	case "object":
		return genai.TypeObject, nil
	case "array":
		return genai.TypeArray, nil
	case "string":
		return genai.TypeString, nil
	case "integer":
		return genai.TypeInteger, nil
	case "number":
		return genai.TypeNumber, nil
	case "boolean":
		return genai.TypeBoolean, nil
	default:
		return genai.TypeUnspecified, fmt.Errorf("unsupported schema type %q", t)
	}
}
