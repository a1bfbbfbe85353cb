package state

import (
	"fmt"
	"testing"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

func newTestGenesisStore(t *testing.T) *GenesisStore {
	t.Helper()
	s, err := NewGenesisStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWizardStepBounds(t *testing.T) {
	s := newTestGenesisStore(t)

	s.PrevStep()
	if got := s.Step(); got != 0 {
		t.Errorf("PrevStep at 0 moved to %d", got)
	}
	for i := 0; i < 10; i++ {
		s.NextStep()
	}
	if got := s.Step(); got != maxWizardStep {
		t.Errorf("NextStep overran to %d", got)
	}
	s.SetStep(-3)
	if got := s.Step(); got != 0 {
		t.Errorf("SetStep(-3) gave %d", got)
	}
	s.SetStep(99)
	if got := s.Step(); got != maxWizardStep {
		t.Errorf("SetStep(99) gave %d", got)
	}
}

func TestWizardAgentEditing(t *testing.T) {
	s := newTestGenesisStore(t)

	s.AddAgent(types.AgentSpec{Name: "scout", ModelName: "llama3"})
	s.AddAgent(types.AgentSpec{Name: "scribe", ModelName: "llama3"})

	spec := s.Spec()
	if len(spec.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(spec.Agents))
	}
	if spec.Agents[0].TempID == "" || spec.Agents[0].TempID == spec.Agents[1].TempID {
		t.Error("agents missing distinct temp IDs")
	}

	tempID := spec.Agents[0].TempID
	s.UpdateAgent(0, types.AgentSpec{Name: "scout", ModelName: "llama3.1"})
	if got := s.Spec().Agents[0]; got.ModelName != "llama3.1" || got.TempID != tempID {
		t.Errorf("update lost fields: %+v", got)
	}

	s.MoveAgent(1, -1)
	if got := s.Spec().Agents[0].Name; got != "scribe" {
		t.Errorf("move up failed, first agent is %q", got)
	}
	s.MoveAgent(0, -1)
	if got := s.Spec().Agents[0].Name; got != "scribe" {
		t.Errorf("move off the top should be ignored, first agent is %q", got)
	}

	s.RemoveAgent(0)
	s.RemoveAgent(5)
	if got := len(s.Spec().Agents); got != 1 {
		t.Errorf("expected 1 agent after removal, got %d", got)
	}
}

func TestBeginPipelineResetsRunState(t *testing.T) {
	s := newTestGenesisStore(t)

	s.AppendLog(types.PipelineLogEntry{Stage: types.StageValidation, Level: types.LogInfo, Message: "old"})
	s.FinishPipeline(types.PipelineError, &types.PipelineResult{Error: "old failure"})
	s.MarkRegistered()

	s.BeginPipeline()
	if s.PipelineStatus() != types.PipelineRunning {
		t.Error("status not running after BeginPipeline")
	}
	if len(s.Logs()) != 0 {
		t.Error("logs not cleared")
	}
	if s.Result() != nil {
		t.Error("result not cleared")
	}
	if s.Registered() {
		t.Error("registered flag not cleared")
	}
	if s.Step() != maxWizardStep {
		t.Errorf("wizard not on progress step, got %d", s.Step())
	}
}

func TestAppendLogDropsOldestPastCap(t *testing.T) {
	s := newTestGenesisStore(t)

	for i := 0; i < MaxPipelineLogs+5; i++ {
		s.AppendLog(types.PipelineLogEntry{
			Stage:   types.StageForgeron,
			Level:   types.LogInfo,
			Message: fmt.Sprintf("line %d", i),
		})
	}

	logs := s.Logs()
	if len(logs) != MaxPipelineLogs {
		t.Fatalf("expected %d logs, got %d", MaxPipelineLogs, len(logs))
	}
	if logs[0].Message != "line 5" {
		t.Errorf("oldest entries not dropped, first is %q", logs[0].Message)
	}
	if logs[len(logs)-1].Message != fmt.Sprintf("line %d", MaxPipelineLogs+4) {
		t.Errorf("newest entry missing, last is %q", logs[len(logs)-1].Message)
	}
}

func TestRunningPipelineResetsToIdleOnReload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewGenesisStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.BeginPipeline()
	s.SetPipelineID("pipe-1")

	reloaded, err := NewGenesisStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.PipelineStatus(); got != types.PipelineIdle {
		t.Errorf("expected idle after reload of a running pipeline, got %s", got)
	}
}

func TestResetWizardClearsEverything(t *testing.T) {
	s := newTestGenesisStore(t)

	s.SetIdentity("demo", "Demo", "🚀", "a demo family")
	s.AddAgent(types.AgentSpec{Name: "scout", ModelName: "llama3"})
	s.BeginPipeline()
	s.FinishPipeline(types.PipelineComplete, &types.PipelineResult{Port: 4001})
	s.MarkRegistered()

	s.ResetWizard()
	spec := s.Spec()
	if spec.Name != "" || len(spec.Agents) != 0 {
		t.Error("draft not cleared")
	}
	if s.Step() != 0 || s.PipelineStatus() != types.PipelineIdle || s.Result() != nil || s.Registered() {
		t.Error("pipeline state not cleared")
	}
}

func TestWizardDraftPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewGenesisStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.SetIdentity("demo", "Demo", "🚀", "a demo family")
	s.SetCapabilities([]string{"research"})
	s.SetSchedule(map[string]string{"daily-report": "0 9 * * *"})
	s.SetStep(2)

	reloaded, err := NewGenesisStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	spec := reloaded.Spec()
	if spec.Name != "demo" || spec.Capabilities[0] != "research" || spec.Schedule["daily-report"] != "0 9 * * *" {
		t.Errorf("draft lost on reload: %+v", spec)
	}
	if reloaded.Step() != 2 {
		t.Errorf("wizard step lost on reload, got %d", reloaded.Step())
	}
}
