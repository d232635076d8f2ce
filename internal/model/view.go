package model

// View is the state a presenter renders after every operation.
type View struct {
	// Turns of the active conversation, empty when no conversation is active.
	Turns   []Turn         `json:"turns"`
	Archive []ArchiveEntry `json:"archive"`
	Active  bool           `json:"active"`

	// Origin is "new" for an unarchived conversation, "resumed" otherwise.
	Origin      string `json:"origin,omitempty"`
	ResumedFrom *int   `json:"resumed_from,omitempty"`

	// Notice is a user-visible message left by the last operation.
	Notice string `json:"notice,omitempty"`
}

// Persona describes the assistant shown on the page.
type Persona struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Instructions string   `json:"instructions,omitempty" yaml:"instructions"`
	Starters     []string `json:"starters" yaml:"starters"`
	Placeholder  string   `json:"placeholder,omitempty" yaml:"placeholder"`
}
