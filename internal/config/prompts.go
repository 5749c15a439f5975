package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// ChefPrompts holds the Chef AI prompt templates.
type ChefPrompts struct {
	// Persona wraps a user question. Placeholders: {{.Question}}, {{.Username}}.
	Persona string `yaml:"persona"`
	// QueryPlan asks the model for search phrases. Placeholders: {{.Input}}, {{.MaxQueries}}.
	QueryPlan string `yaml:"query_plan"`
}

// Prompts is the top-level prompt configuration loaded from YAML.
type Prompts struct {
	Chef ChefPrompts `yaml:"chef"`
}

// DefaultPrompts returns the prompt set compiled into the binary.
func DefaultPrompts() *Prompts {
	var prompts Prompts
	if err := yaml.Unmarshal(defaultPromptsYAML, &prompts); err != nil {
		panic("embedded prompts.yaml is invalid: " + err.Error())
	}
	return &prompts
}

// LoadPrompts reads and parses a YAML prompt configuration file. An empty
// path returns the embedded defaults. Templates missing from the file fall
// back to their default.
func LoadPrompts(path string) (*Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	if strings.TrimSpace(override.Chef.Persona) != "" {
		prompts.Chef.Persona = override.Chef.Persona
	}
	if strings.TrimSpace(override.Chef.QueryPlan) != "" {
		prompts.Chef.QueryPlan = override.Chef.QueryPlan
	}

	return prompts, nil
}

// RenderPrompt executes Go template interpolation on a prompt string.
// The data map provides values for placeholders like {{.Question}}.
func RenderPrompt(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
