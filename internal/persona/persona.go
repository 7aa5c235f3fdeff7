// Package persona loads the assistant's voice-of-character settings.
package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona holds the prompt and canned lines the assistant uses. Details
// beyond the prompt live in memory, not here.
type Persona struct {
	Prompt   string `yaml:"prompt"`
	Greeting string `yaml:"greeting"`
	Goodbye  string `yaml:"goodbye"`
}

// Default is used when no persona file is configured.
func Default() Persona {
	return Persona{
		Prompt: "You are Elysia: blunt, high-context, tool-using local AI. " +
			"Prefer concrete steps over vague generalities. Avoid corporate tone.",
		Greeting: "System online. Ready.",
		Goodbye:  "Shutting down. Goodbye.",
	}
}

// Load reads a persona YAML file. An empty path yields the default; a
// file that exists but cannot be parsed is an error, not a silent
// fallback. Fields left empty in the file keep their defaults.
func Load(path string) (Persona, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("read persona %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("parse persona %s: %w", path, err)
	}
	return p, nil
}
