// internal/state/genesis.go
package state

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

const (
	// MaxPipelineLogs caps the retained build log; the oldest entries are
	// dropped first.
	MaxPipelineLogs = 500

	maxWizardStep = 4
)

// GenesisStore holds the family-creation wizard draft and the state of the
// build pipeline. Everything persists across restarts except the cancel
// handle, which belongs to the runner.
type GenesisStore struct {
	mu   sync.RWMutex
	path string
	data genesisFile
}

type genesisFile struct {
	WizardStep     int                         `json:"wizard_step"`
	Spec           types.FamilyCreationRequest `json:"spec"`
	PipelineID     types.PipelineID            `json:"pipeline_id,omitempty"`
	PipelineStatus types.PipelineStatus        `json:"pipeline_status"`
	PipelineLogs   []types.PipelineLogEntry    `json:"pipeline_logs"`
	PipelineResult *types.PipelineResult       `json:"pipeline_result,omitempty"`
	Registered     bool                        `json:"registered"`
}

func emptySpec() types.FamilyCreationRequest {
	return types.FamilyCreationRequest{
		Agents:       []types.AgentSpec{},
		Capabilities: []string{},
		Outputs:      []string{},
		Schedule:     map[string]string{},
	}
}

// NewGenesisStore loads wizard and pipeline state from
// <dataDir>/genesis.json. A pipeline persisted mid-run is reset to idle;
// the stream cannot be resumed.
func NewGenesisStore(dataDir string) (*GenesisStore, error) {
	s := &GenesisStore{path: filepath.Join(dataDir, "genesis.json")}
	loaded, err := readJSON(s.path, &s.data)
	if err != nil {
		return nil, fmt.Errorf("load genesis state: %w", err)
	}
	if !loaded {
		s.data = genesisFile{Spec: emptySpec(), PipelineStatus: types.PipelineIdle, PipelineLogs: []types.PipelineLogEntry{}}
		return s, nil
	}
	if s.data.PipelineStatus == types.PipelineRunning || s.data.PipelineStatus == "" {
		s.data.PipelineStatus = types.PipelineIdle
	}
	if s.data.WizardStep < 0 {
		s.data.WizardStep = 0
	}
	if s.data.WizardStep > maxWizardStep {
		s.data.WizardStep = maxWizardStep
	}
	return s, nil
}

func (s *GenesisStore) save() {
	if err := writeJSON(s.path, s.data); err != nil {
		slog.Error("failed to persist genesis state", "error", err)
	}
}

// Step returns the current wizard step.
func (s *GenesisStore) Step() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.WizardStep
}

// SetStep jumps to a wizard step, clamped to the valid range.
func (s *GenesisStore) SetStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if step < 0 {
		step = 0
	}
	if step > maxWizardStep {
		step = maxWizardStep
	}
	s.data.WizardStep = step
	s.save()
}

// NextStep advances the wizard, saturating at the last step.
func (s *GenesisStore) NextStep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.WizardStep < maxWizardStep {
		s.data.WizardStep++
		s.save()
	}
}

// PrevStep moves the wizard back, saturating at the first step.
func (s *GenesisStore) PrevStep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.WizardStep > 0 {
		s.data.WizardStep--
		s.save()
	}
}

// Spec returns a copy of the draft family spec.
func (s *GenesisStore) Spec() types.FamilyCreationRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySpec(s.data.Spec)
}

// SetIdentity updates the family's identity fields.
func (s *GenesisStore) SetIdentity(name, displayName, emoji, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Spec.Name = name
	s.data.Spec.DisplayName = displayName
	s.data.Spec.Emoji = emoji
	s.data.Spec.Description = description
	s.save()
}

// SetCapabilities replaces the draft's capability list.
func (s *GenesisStore) SetCapabilities(capabilities []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Spec.Capabilities = append([]string{}, capabilities...)
	s.save()
}

// SetOutputs replaces the draft's output list.
func (s *GenesisStore) SetOutputs(outputs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Spec.Outputs = append([]string{}, outputs...)
	s.save()
}

// SetSchedule replaces the draft's schedule map.
func (s *GenesisStore) SetSchedule(schedule map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]string, len(schedule))
	for k, v := range schedule {
		m[k] = v
	}
	s.data.Spec.Schedule = m
	s.save()
}

// AddAgent appends an agent to the draft, assigning it a temporary ID for
// wizard editing.
func (s *GenesisStore) AddAgent(agent types.AgentSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent.TempID = uuid.New().String()
	s.data.Spec.Agents = append(s.data.Spec.Agents, agent)
	s.save()
}

// UpdateAgent replaces the agent at index, keeping its temporary ID.
// Out-of-range indexes are ignored.
func (s *GenesisStore) UpdateAgent(index int, agent types.AgentSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.data.Spec.Agents) {
		return
	}
	agent.TempID = s.data.Spec.Agents[index].TempID
	s.data.Spec.Agents[index] = agent
	s.save()
}

// RemoveAgent removes the agent at index. Out-of-range indexes are ignored.
func (s *GenesisStore) RemoveAgent(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.data.Spec.Agents) {
		return
	}
	s.data.Spec.Agents = append(s.data.Spec.Agents[:index], s.data.Spec.Agents[index+1:]...)
	s.save()
}

// MoveAgent swaps the agent at index with its neighbor. delta is -1 for up
// and +1 for down; moves off either end are ignored.
func (s *GenesisStore) MoveAgent(index, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := index + delta
	agents := s.data.Spec.Agents
	if index < 0 || index >= len(agents) || target < 0 || target >= len(agents) {
		return
	}
	agents[index], agents[target] = agents[target], agents[index]
	s.save()
}

// ResetWizard clears the draft and all pipeline state.
func (s *GenesisStore) ResetWizard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = genesisFile{Spec: emptySpec(), PipelineStatus: types.PipelineIdle, PipelineLogs: []types.PipelineLogEntry{}}
	s.save()
}

// BeginPipeline marks a run as started: logs and result are cleared, the
// status becomes running, and the wizard jumps to the progress step.
func (s *GenesisStore) BeginPipeline() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.PipelineID = ""
	s.data.PipelineStatus = types.PipelineRunning
	s.data.PipelineLogs = []types.PipelineLogEntry{}
	s.data.PipelineResult = nil
	s.data.Registered = false
	s.data.WizardStep = maxWizardStep
	s.save()
}

// SetPipelineID records the pipeline ID returned by the creation request.
func (s *GenesisStore) SetPipelineID(id types.PipelineID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.PipelineID = id
	s.save()
}

// PipelineID returns the current pipeline ID, or empty.
func (s *GenesisStore) PipelineID() types.PipelineID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.PipelineID
}

// PipelineStatus returns the pipeline's current status.
func (s *GenesisStore) PipelineStatus() types.PipelineStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.PipelineStatus
}

// SetPipelineStatus sets the pipeline status without touching logs or
// result.
func (s *GenesisStore) SetPipelineStatus(status types.PipelineStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.PipelineStatus = status
	s.save()
}

// AppendLog appends a build log entry, dropping the oldest entries past
// the cap.
func (s *GenesisStore) AppendLog(entry types.PipelineLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.PipelineLogs = append(s.data.PipelineLogs, entry)
	if n := len(s.data.PipelineLogs); n > MaxPipelineLogs {
		s.data.PipelineLogs = s.data.PipelineLogs[n-MaxPipelineLogs:]
	}
	s.save()
}

// Logs returns a copy of the retained build log.
func (s *GenesisStore) Logs() []types.PipelineLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.PipelineLogEntry, len(s.data.PipelineLogs))
	copy(out, s.data.PipelineLogs)
	return out
}

// FinishPipeline records the terminal outcome of a run.
func (s *GenesisStore) FinishPipeline(status types.PipelineStatus, result *types.PipelineResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.PipelineStatus = status
	s.data.PipelineResult = result
	s.save()
}

// Result returns the terminal result of the last run, or nil.
func (s *GenesisStore) Result() *types.PipelineResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data.PipelineResult == nil {
		return nil
	}
	r := *s.data.PipelineResult
	r.Stages = append([]types.StageResult{}, s.data.PipelineResult.Stages...)
	return &r
}

// Registered reports whether the last completed family has already been
// registered as a backend.
func (s *GenesisStore) Registered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Registered
}

// MarkRegistered flags the last completed family as registered so a second
// registration attempt is a no-op.
func (s *GenesisStore) MarkRegistered() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Registered = true
	s.save()
}

func copySpec(spec types.FamilyCreationRequest) types.FamilyCreationRequest {
	c := spec
	c.Agents = append([]types.AgentSpec{}, spec.Agents...)
	c.Capabilities = append([]string{}, spec.Capabilities...)
	c.Outputs = append([]string{}, spec.Outputs...)
	c.Schedule = make(map[string]string, len(spec.Schedule))
	for k, v := range spec.Schedule {
		c.Schedule[k] = v
	}
	return c
}
