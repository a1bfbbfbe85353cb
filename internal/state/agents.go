// internal/state/agents.go
package state

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

// Sampling bounds every stored agent must satisfy.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 256
	MaxMaxTokens   = 8192
)

// AgentStore is a JSON-file-backed agent store.
type AgentStore struct {
	mu     sync.RWMutex
	path   string
	agents []*types.Agent
}

// clampSampling forces temperature and max-tokens into their bounds.
func clampSampling(a *types.Agent) {
	if a.Temperature < MinTemperature {
		a.Temperature = MinTemperature
	}
	if a.Temperature > MaxTemperature {
		a.Temperature = MaxTemperature
	}
	if a.MaxTokens < MinMaxTokens {
		a.MaxTokens = MinMaxTokens
	}
	if a.MaxTokens > MaxMaxTokens {
		a.MaxTokens = MaxMaxTokens
	}
}

// NewAgentStore loads agents from <dataDir>/agents.json.
func NewAgentStore(dataDir string) (*AgentStore, error) {
	s := &AgentStore{path: filepath.Join(dataDir, "agents.json")}
	if _, err := readJSON(s.path, &s.agents); err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	return s, nil
}

func (s *AgentStore) save() {
	if err := writeJSON(s.path, s.agents); err != nil {
		slog.Error("failed to persist agents", "error", err)
	}
}

func (s *AgentStore) find(id types.AgentID) *types.Agent {
	for _, a := range s.agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Add stores an agent and returns its ID. An agent arriving without an ID
// gets a fresh one.
func (s *AgentStore) Add(agent types.Agent) types.AgentID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if agent.ID == "" {
		agent.ID = types.NewAgentID()
	}
	now := time.Now()
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = now
	}
	agent.UpdatedAt = now
	clampSampling(&agent)
	s.agents = append(s.agents, &agent)
	s.save()
	return agent.ID
}

// Update replaces an agent's mutable fields.
func (s *AgentStore) Update(id types.AgentID, agent types.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.find(id)
	if existing == nil {
		return fmt.Errorf("agent not found: %s", id)
	}
	agent.ID = id
	agent.CreatedAt = existing.CreatedAt
	agent.IsPreset = existing.IsPreset
	agent.UpdatedAt = time.Now()
	clampSampling(&agent)
	*existing = agent
	s.save()
	return nil
}

// Remove deletes an agent. Presets cannot be removed.
func (s *AgentStore) Remove(id types.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.agents {
		if a.ID != id {
			continue
		}
		if a.IsPreset {
			return fmt.Errorf("agent %s is a preset and cannot be removed", a.Name)
		}
		s.agents = append(s.agents[:i], s.agents[i+1:]...)
		s.save()
		return nil
	}
	return fmt.Errorf("agent not found: %s", id)
}

// Get returns a copy of the agent, or nil.
func (s *AgentStore) Get(id types.AgentID) *types.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.find(id)
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// List returns copies of all agents.
func (s *AgentStore) List() []*types.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Agent, len(s.agents))
	for i, a := range s.agents {
		c := *a
		out[i] = &c
	}
	return out
}

// ByBackend returns copies of the agents bound to the given backend.
func (s *AgentStore) ByBackend(backendID types.BackendID) []*types.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Agent
	for _, a := range s.agents {
		if a.BackendID == backendID {
			c := *a
			out = append(out, &c)
		}
	}
	return out
}

// SeedPresets adds the given preset agents, skipping any whose name already
// exists as a preset. Seeding the same set twice is a no-op. Returns the
// number of agents added.
func (s *AgentStore) SeedPresets(presets []types.Agent) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool)
	for _, a := range s.agents {
		if a.IsPreset {
			existing[a.Name] = true
		}
	}

	added := 0
	now := time.Now()
	for _, p := range presets {
		if existing[p.Name] {
			continue
		}
		p.IsPreset = true
		if p.ID == "" {
			p.ID = types.NewAgentID()
		}
		p.CreatedAt = now
		p.UpdatedAt = now
		clampSampling(&p)
		s.agents = append(s.agents, &p)
		existing[p.Name] = true
		added++
	}
	if added > 0 {
		s.save()
	}
	return added
}
