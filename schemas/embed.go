// Package schemas holds the JSON Schema documents describing every structured AI response.
// The documents are embedded so the validator and the generation constraint read the same bytes.
package schemas

import (
	"embed"
	"fmt"
)

// Schema file names.
const (
	AnalysisFile = "analysis.schema.json"
	HeadshotFile = "headshot.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the raw content of an embedded schema file.
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not embedded: %w", name, err)
	}
	return string(data), nil
}

// MustLoad is Load for schemas that are required at initialization time.
func MustLoad(name string) string {
	content, err := Load(name)
	if err != nil {
		panic(err)
	}
	return content
}

// Analysis returns the analysis result schema.
func Analysis() string {
	return MustLoad(AnalysisFile)
}

// Headshot returns the headshot analysis schema.
func Headshot() string {
	return MustLoad(HeadshotFile)
}
