// Package prompts holds the model instructions for CV and headshot analysis.
// Each embedded JSON file maps a prompt name to its text; {{.Name}}
// placeholders are filled when a request is built.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Prompt files.
const (
	AnalysisFile = "analysis.json"
	HeadshotFile = "headshot.json"
)

//go:embed *.json
var promptFiles embed.FS

var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

// catalog parses every embedded file once.
var catalog = sync.OnceValues(func() (map[string]map[string]string, error) {
	entries, err := promptFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt files: %w", err)
	}
	set := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		if path.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := promptFiles.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
		}
		set[entry.Name()] = prompts
	}
	return set, nil
})

// Get returns the raw text of prompt key in file.
func Get(file, key string) (string, error) {
	set, err := catalog()
	if err != nil {
		return "", err
	}
	prompts, ok := set[file]
	if !ok {
		return "", fmt.Errorf("unknown prompt file %q", file)
	}
	text, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", key, file)
	}
	return text, nil
}

// Format fills the placeholders that have a value in data and leaves the rest,
// so a prompt can be filled in stages. Values are inserted verbatim.
func Format(text string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		if value, ok := data[placeholder.FindStringSubmatch(m)[1]]; ok {
			return value
		}
		return m
	})
}

// Render looks up a prompt and fills it. Every placeholder the prompt uses
// must have a value.
func Render(file, key string, data map[string]string) (string, error) {
	text, err := Get(file, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(text) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q in %s has no value for %s", key, file, strings.Join(missing, ", "))
	}
	return Format(text, data), nil
}

// Placeholders lists the placeholder names in text in order of first use.
func Placeholders(text string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Keys returns the prompt names in file, sorted.
func Keys(file string) ([]string, error) {
	set, err := catalog()
	if err != nil {
		return nil, err
	}
	prompts, ok := set[file]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %q", file)
	}
	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
