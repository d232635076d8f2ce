package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/capitalize-ai/travelers-buddy/internal/model"
)

// DefaultPersona is the assistant shown when no persona file is configured.
func DefaultPersona() model.Persona {
	return model.Persona{
		Name:        "Traveler's Buddy",
		Description: "I am your virtual travel guide, here to assist you with exploring the world.",
		Instructions: "Provide helpful and accurate travel information, suggest popular destinations, recommend local cuisine, " +
			"and share cultural or safety tips specific to different regions.",
		Starters: []string{
			"What are the best places to visit in Rajasthan?",
			"Can you suggest famous street food in Delhi?",
			"What should I pack for a trip to Ladakh?",
			"Are there any cultural festivals happening in India this month?",
			"What are the top beaches to visit in Goa?",
		},
		Placeholder: "Ask me anything about traveling in India...",
	}
}

// LoadPersona reads a YAML persona file. Fields missing from the file keep
// their default values. An empty path returns the default persona.
func LoadPersona(path string) (model.Persona, error) {
	persona := DefaultPersona()
	if path == "" {
		return persona, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return persona, fmt.Errorf("failed to read persona file: %w", err)
	}

	var override model.Persona
	if err := yaml.Unmarshal(data, &override); err != nil {
		return persona, fmt.Errorf("failed to parse persona file: %w", err)
	}

	if override.Name != "" {
		persona.Name = override.Name
	}
	if override.Description != "" {
		persona.Description = override.Description
	}
	if override.Instructions != "" {
		persona.Instructions = override.Instructions
	}
	if len(override.Starters) > 0 {
		persona.Starters = override.Starters
	}
	if override.Placeholder != "" {
		persona.Placeholder = override.Placeholder
	}
	return persona, nil
}
