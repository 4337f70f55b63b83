// Package render turns lifelens results into text, markdown, JSON or YAML.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Options tunes rendering.
type Options struct {
	// Location is the zone timestamps are shown in. Nil means time.Local.
	Location *time.Location
}

func (o Options) loc() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// Renderer renders a result value to a string in a specific format.
type Renderer interface {
	Render(v any, opts Options) (string, error)
}

// registry maps format names to Renderer implementations.
var registry = map[string]Renderer{
	"text":     &DocRenderer{},
	"markdown": &DocRenderer{Markdown: true},
	"json":     &JSONRenderer{},
	"yaml":     &YAMLRenderer{},
}

// Get returns the Renderer registered under name, and whether it was found.
func Get(name string) (Renderer, bool) {
	r, ok := registry[name]
	return r, ok
}

// ValidFormats returns the supported format names, sorted.
func ValidFormats() []string {
	formats := make([]string, 0, len(registry))
	for k := range registry {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}

// JSONRenderer renders indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(v any, _ Options) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render: json: %w", err)
	}
	return string(b) + "\n", nil
}

// YAMLRenderer renders YAML with the same keys and field order as the JSON
// output.
type YAMLRenderer struct{}

func (r *YAMLRenderer) Render(v any, _ Options) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("render: yaml: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return "", fmt.Errorf("render: yaml: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", fmt.Errorf("render: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render: yaml: %w", err)
	}
	return buf.String(), nil
}

// clearStyle drops the flow style and quoting the JSON source imposes so the
// output reads as block YAML.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
