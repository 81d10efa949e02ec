package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the decoder used by Parse.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file name: ".json" is JSON, anything else YAML.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and validates a scenario file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	doc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse scenario json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
		}
	}

	doc.normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// normalize turns every decoded container into the plain shapes the state
// graph understands.
func (d *Document) normalize() {
	if d.Initial == nil {
		d.Initial = map[string]any{}
	}
	for k, v := range d.Initial {
		d.Initial[k] = plain(v)
	}
	for i := range d.Steps {
		normalizeOps(d.Steps[i].Ops)
	}
	for i := range d.Subscribers {
		for j := range d.Subscribers[i].Reactions {
			normalizeOps(d.Subscribers[i].Reactions[j].Ops)
		}
	}
}

func normalizeOps(ops []Op) {
	for i := range ops {
		ops[i].Value = plain(ops[i].Value)
	}
}

// plain converts maps with non-string keys, which YAML produces for
// mappings keyed by numbers or booleans, into map[string]any.
func plain(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = plain(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = plain(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = plain(item)
		}
		return val
	}
	return v
}
