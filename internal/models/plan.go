// internal/models/plan.go
package models

type PlanMetadata struct {
	PlanID          string `json:"plan_id"`
	QuestionType    string `json:"question_type"`
	Complexity      string `json:"complexity"`
	QuestionContext string `json:"question_context,omitempty"`
}

type PlanStep struct {
	StepID      int            `json:"step_id"`
	ToolName    string         `json:"tool_name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	DependsOn   []int          `json:"depends_on,omitempty"`
}

// Plan is the raw multi-step plan returned by the planning model. Only the
// first step's tool and parameters feed the default strategy.
type Plan struct {
	Metadata PlanMetadata `json:"metadata"`
	Steps    []PlanStep   `json:"steps"`
	Summary  string       `json:"summary,omitempty"`
}

func (p *Plan) FirstStep() (PlanStep, bool) {
	if p == nil || len(p.Steps) == 0 {
		return PlanStep{}, false
	}
	return p.Steps[0], true
}
