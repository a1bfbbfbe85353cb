// internal/genesis/stages.go
package genesis

import "github.com/bacoco/la-famille-agentui/internal/types"

// StageStatus is the derived display status of one pipeline stage.
type StageStatus string

const (
	StagePending  StageStatus = "pending"
	StageRunning  StageStatus = "running"
	StageComplete StageStatus = "complete"
	StageFailed   StageStatus = "error"
)

// Stages returns the pipeline stages in build order.
func Stages() []types.PipelineStage {
	return []types.PipelineStage{
		types.StageValidation,
		types.StageArchitecte,
		types.StageScribe,
		types.StageForgeron,
	}
}

// StageState derives a stage's status from the build log. A stage with no
// log entries has not started. An error entry marks it failed, a success
// entry marks it complete, and a stage with output but no verdict is
// running unless the whole pipeline has already failed.
func StageState(stage types.PipelineStage, logs []types.PipelineLogEntry, pipeline types.PipelineStatus) StageStatus {
	var seen, failed, succeeded bool
	for _, entry := range logs {
		if entry.Stage != stage {
			continue
		}
		seen = true
		switch entry.Level {
		case types.LogError:
			failed = true
		case types.LogSuccess:
			succeeded = true
		}
	}
	if !seen {
		return StagePending
	}
	if failed {
		return StageFailed
	}
	if succeeded {
		return StageComplete
	}
	if pipeline == types.PipelineError {
		return StageFailed
	}
	return StageRunning
}
