package state

import (
	"testing"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

func newTestAgentStore(t *testing.T) *AgentStore {
	t.Helper()
	s, err := NewAgentStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAgentAddAndGet(t *testing.T) {
	s := newTestAgentStore(t)

	id := s.Add(types.Agent{Name: "Maman", Model: "maman", BackendID: "family-api"})
	if id == "" {
		t.Fatal("expected generated agent ID")
	}
	a := s.Get(id)
	if a == nil || a.Name != "Maman" {
		t.Fatalf("unexpected agent: %+v", a)
	}
}

func TestAgentSamplingBoundsClamped(t *testing.T) {
	s := newTestAgentStore(t)

	id := s.Add(types.Agent{Name: "Hot", Model: "m", Temperature: 5.0, MaxTokens: 100000})
	a := s.Get(id)
	if a.Temperature != MaxTemperature {
		t.Errorf("temperature not clamped down: %v", a.Temperature)
	}
	if a.MaxTokens != MaxMaxTokens {
		t.Errorf("max tokens not clamped down: %d", a.MaxTokens)
	}

	id = s.Add(types.Agent{Name: "Cold", Model: "m", Temperature: -1.0, MaxTokens: 10})
	a = s.Get(id)
	if a.Temperature != MinTemperature {
		t.Errorf("temperature not clamped up: %v", a.Temperature)
	}
	if a.MaxTokens != MinMaxTokens {
		t.Errorf("max tokens not clamped up: %d", a.MaxTokens)
	}

	upd := *a
	upd.Temperature = 3.0
	if err := s.Update(id, upd); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(id).Temperature; got != MaxTemperature {
		t.Errorf("update bypassed the temperature bound: %v", got)
	}
}

func TestAgentRemoveRefusesPresets(t *testing.T) {
	s := newTestAgentStore(t)

	added := s.SeedPresets([]types.Agent{{Name: "Maman", Model: "maman"}})
	if added != 1 {
		t.Fatalf("expected 1 preset seeded, got %d", added)
	}
	preset := s.List()[0]
	if err := s.Remove(preset.ID); err == nil {
		t.Error("expected error removing a preset")
	}

	custom := s.Add(types.Agent{Name: "Custom", Model: "custom"})
	if err := s.Remove(custom); err != nil {
		t.Errorf("removing custom agent failed: %v", err)
	}
}

func TestSeedPresetsIsIdempotent(t *testing.T) {
	s := newTestAgentStore(t)

	presets := []types.Agent{
		{Name: "Maman", Model: "maman"},
		{Name: "Henry", Model: "henry"},
	}
	if added := s.SeedPresets(presets); added != 2 {
		t.Fatalf("first seed added %d, want 2", added)
	}
	if added := s.SeedPresets(presets); added != 0 {
		t.Errorf("second seed added %d, want 0", added)
	}
	if got := len(s.List()); got != 2 {
		t.Errorf("expected 2 agents, got %d", got)
	}
}

func TestSeedPresetsKeepsCustomAgentsApart(t *testing.T) {
	s := newTestAgentStore(t)

	// A custom agent sharing a preset's name does not block seeding.
	s.Add(types.Agent{Name: "Maman", Model: "other"})
	if added := s.SeedPresets([]types.Agent{{Name: "Maman", Model: "maman"}}); added != 1 {
		t.Errorf("expected preset seeded alongside same-named custom agent, got %d", added)
	}
}

func TestAgentUpdatePreservesPresetFlag(t *testing.T) {
	s := newTestAgentStore(t)

	s.SeedPresets([]types.Agent{{Name: "Maman", Model: "maman"}})
	preset := s.List()[0]

	upd := *preset
	upd.Model = "maman-v2"
	upd.IsPreset = false
	if err := s.Update(preset.ID, upd); err != nil {
		t.Fatal(err)
	}
	got := s.Get(preset.ID)
	if got.Model != "maman-v2" {
		t.Errorf("model not updated: %q", got.Model)
	}
	if !got.IsPreset {
		t.Error("update cleared the preset flag")
	}
}

func TestAgentsByBackend(t *testing.T) {
	s := newTestAgentStore(t)

	s.Add(types.Agent{Name: "A", BackendID: "backend-1"})
	s.Add(types.Agent{Name: "B", BackendID: "backend-2"})
	s.Add(types.Agent{Name: "C", BackendID: "backend-1"})

	got := s.ByBackend("backend-1")
	if len(got) != 2 {
		t.Fatalf("expected 2 agents on backend-1, got %d", len(got))
	}
}

func TestAgentsPersistAcrossReload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewAgentStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	id := s.Add(types.Agent{Name: "Maman", Model: "maman"})

	reloaded, err := NewAgentStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Get(id) == nil {
		t.Error("agent lost on reload")
	}
}
