// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	loadOnce sync.Once
	loaded   map[string]map[string]string
	loadErr  error
)

// Get retrieves a prompt by filename and key. The filename should not
// include a path (e.g., "planning.json"). Returns an error if the file or
// key is not found.
func Get(filename, key string) (string, error) {
	loadAll()
	if loadErr != nil {
		return "", loadErr
	}

	file, ok := loaded[filename]
	if !ok {
		return "", fmt.Errorf("prompt file %q not found", filename)
	}

	prompt, ok := file[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
// Use this for prompts that are required at initialization time.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces template placeholders in the form {{.Key}} with values
// from data. This is a simple template system for prompt customization.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// loadAll parses every embedded prompt file once.
func loadAll() {
	loadOnce.Do(func() {
		loaded = make(map[string]map[string]string)

		entries, err := promptFiles.ReadDir(".")
		if err != nil {
			loadErr = fmt.Errorf("failed to read embedded prompts: %w", err)
			return
		}

		for _, entry := range entries {
			data, err := promptFiles.ReadFile(entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
				return
			}

			var file map[string]string
			if err := json.Unmarshal(data, &file); err != nil {
				loadErr = fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
				return
			}
			loaded[entry.Name()] = file
		}
	})
}
