// internal/genesis/validate.go
package genesis

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSpec checks a family spec before anything is submitted. A spec
// that fails here never reaches the builder service.
func ValidateSpec(spec types.FamilyCreationRequest) error {
	if spec.Name == "" {
		return fmt.Errorf("family name is required")
	}
	if spec.DisplayName == "" {
		return fmt.Errorf("family display name is required")
	}
	if len(spec.Agents) == 0 {
		return fmt.Errorf("at least one agent is required")
	}
	for i, agent := range spec.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agent %d: name is required", i+1)
		}
		if agent.ModelName == "" {
			return fmt.Errorf("agent %q: model name is required", agent.Name)
		}
	}
	for task, expr := range spec.Schedule {
		if _, err := cronParser.Parse(expr); err != nil {
			return fmt.Errorf("schedule %q: invalid cron expression %q: %w", task, expr, err)
		}
	}
	return nil
}
