// internal/types/agent.go
package types

import "time"

type Personality struct {
	Vibe        string `json:"vibe"`
	Role        string `json:"role"`
	Limitations string `json:"limitations"`
}

// Agent is a chat persona backed by a model on one of the configured
// backends. Presets are seeded once, keyed by name, and cannot be removed.
type Agent struct {
	ID           AgentID     `json:"id"`
	Name         string      `json:"name"`
	Emoji        string      `json:"emoji"`
	Color        string      `json:"color"`
	Description  string      `json:"description"`
	Creature     string      `json:"creature"`
	BackendID    BackendID   `json:"backend_id"`
	Model        string      `json:"model"`
	SystemPrompt string      `json:"system_prompt"`
	Temperature  float64     `json:"temperature"`
	MaxTokens    int         `json:"max_tokens"`
	Personality  Personality `json:"personality"`
	IsPreset     bool        `json:"is_preset"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
