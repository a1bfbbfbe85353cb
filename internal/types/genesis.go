// internal/types/genesis.go
package types

// AgentSpec is one agent declaration inside a family creation request.
// TempID only identifies the entry while the wizard edits the draft.
type AgentSpec struct {
	TempID        string `json:"_tempId,omitempty"`
	Name          string `json:"name"`
	Emoji         string `json:"emoji"`
	Role          string `json:"role"`
	Description   string `json:"description"`
	ModelProvider string `json:"modelProvider"`
	ModelName     string `json:"modelName"`
	Vibe          string `json:"vibe"`
}

// FamilyCreationRequest is the spec submitted to the family-builder
// service. Field names follow the service's wire format.
type FamilyCreationRequest struct {
	Name         string            `json:"name"`
	DisplayName  string            `json:"displayName"`
	Emoji        string            `json:"emoji"`
	Description  string            `json:"description"`
	Agents       []AgentSpec       `json:"agents"`
	Capabilities []string          `json:"capabilities"`
	Outputs      []string          `json:"outputs"`
	Schedule     map[string]string `json:"schedule"`
}

type PipelineStage string

const (
	StageValidation PipelineStage = "validation"
	StageArchitecte PipelineStage = "architecte"
	StageScribe     PipelineStage = "scribe"
	StageForgeron   PipelineStage = "forgeron"
)

type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarn    LogLevel = "warn"
	LogError   LogLevel = "error"
	LogSuccess LogLevel = "success"
)

// PipelineLogEntry is one structured build log line streamed by the
// family-builder service. The timestamp is kept as the service sent it.
type PipelineLogEntry struct {
	Timestamp string        `json:"timestamp"`
	Stage     PipelineStage `json:"stage"`
	Level     LogLevel      `json:"level"`
	Message   string        `json:"message"`
}

type PipelineStatus string

const (
	PipelineIdle     PipelineStatus = "idle"
	PipelineRunning  PipelineStatus = "running"
	PipelineComplete PipelineStatus = "complete"
	PipelineError    PipelineStatus = "error"
)

type StageResult struct {
	Stage   string `json:"stage"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// PipelineResult is the terminal outcome of one pipeline run.
type PipelineResult struct {
	FamilyDir string        `json:"familyDir,omitempty"`
	Port      int           `json:"port,omitempty"`
	Stages    []StageResult `json:"stages,omitempty"`
	Error     string        `json:"error,omitempty"`
}
