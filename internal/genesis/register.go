// internal/genesis/register.go
package genesis

import (
	"fmt"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

// agentColors is the palette cycled through when registering a created
// family's agents.
var agentColors = []string{"#f97316", "#8b5cf6", "#06b6d4", "#10b981", "#f43f5e", "#eab308"}

// RegisterCreatedFamily turns the last completed pipeline result into a
// chat backend and a set of preset agents. It returns the backend ID and
// whether anything was registered. Calling it again, or before a run has
// completed with a port, is a no-op; the backend ID is derived from the
// family name so a reload cannot register the same family twice.
func (r *Runner) RegisterCreatedFamily() (types.BackendID, bool) {
	spec := r.store.Spec()
	result := r.store.Result()

	if r.store.PipelineStatus() != types.PipelineComplete || result == nil || result.Port == 0 || r.store.Registered() {
		return "", false
	}

	backendID := types.BackendID("family-" + spec.Name)
	if r.backends.Get(backendID) == nil {
		models := make([]string, len(spec.Agents))
		for i, agent := range spec.Agents {
			models[i] = agent.Name
		}
		if _, err := r.backends.Add(types.APIBackend{
			ID:        backendID,
			Name:      spec.DisplayName + " API",
			BaseURL:   fmt.Sprintf("http://localhost:%d/v1", result.Port),
			Models:    models,
			TimeoutMs: 120000,
		}); err != nil {
			slog.Error("failed to register family backend", "backend_id", backendID, "error", err)
			return "", false
		}
	}

	presets := make([]types.Agent, len(spec.Agents))
	for i, agent := range spec.Agents {
		presets[i] = presetFor(agent, i, backendID, spec.DisplayName)
	}
	added := r.agents.SeedPresets(presets)

	r.recordFamily(spec, backendID)

	r.store.MarkRegistered()
	slog.Info("registered created family", "backend_id", backendID, "agents", added)
	return backendID, true
}

// recordFamily groups the freshly registered agents into a Family entry.
func (r *Runner) recordFamily(spec types.FamilyCreationRequest, backendID types.BackendID) {
	for _, f := range r.families.List() {
		if f.Name == spec.DisplayName {
			return
		}
	}

	family := types.Family{
		Name:        spec.DisplayName,
		Emoji:       spec.Emoji,
		Description: spec.Description,
	}
	familyID := r.families.Add(family)
	for i, member := range r.agents.ByBackend(backendID) {
		if err := r.families.AddMember(familyID, types.FamilyMember{
			AgentID: member.ID,
			Role:    member.Personality.Role,
			Order:   i,
		}); err != nil {
			slog.Error("failed to record family member", "family_id", familyID, "error", err)
		}
	}
}

// presetFor builds the chat persona for one created agent.
func presetFor(agent types.AgentSpec, index int, backendID types.BackendID, familyName string) types.Agent {
	vibe := agent.Vibe
	if vibe == "" {
		vibe = "Professional and helpful."
	}
	emoji := agent.Emoji
	if emoji == "" {
		emoji = "🤖"
	}
	creature := agent.Role
	if creature == "" {
		creature = "AI agent"
	}
	description := agent.Description
	if description == "" {
		description = fmt.Sprintf("%s from %s", agent.Name, familyName)
	}
	role := agent.Role
	if role == "" {
		role = "assistant"
	}
	personaVibe := agent.Vibe
	if personaVibe == "" {
		personaVibe = "Helpful"
	}

	return types.Agent{
		Name:        capitalize(agent.Name),
		Emoji:       emoji,
		Color:       agentColors[index%len(agentColors)],
		Description: description,
		Creature:    creature,
		BackendID:   backendID,
		Model:       agent.Name,
		SystemPrompt: fmt.Sprintf(
			"You are %s, a %s agent from the %s family.\n\nVibe: %s",
			agent.Name, agent.Role, familyName, vibe),
		Temperature: 0.7,
		MaxTokens:   4096,
		Personality: types.Personality{
			Vibe:        personaVibe,
			Role:        role,
			Limitations: "Follows family policy.",
		},
		IsPreset: true,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
