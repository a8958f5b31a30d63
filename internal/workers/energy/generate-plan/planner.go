// internal/workers/energy/generate-plan/planner.go
package generateplan

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/metrics"
	"energy-agent/internal/common/validation"
	"energy-agent/internal/models"
	"energy-agent/pkg/registry"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

var (
	ErrNoModel       = stderrors.New("LLM_REQUEST_FAILED")
	ErrPlanInvalid   = stderrors.New("PLAN_VALIDATION_FAILED")
	ErrPlanMalformed = stderrors.New("LLM_RESPONSE_INVALID")
)

const promptTemplate = `RÔLE: Traducteur question → plan JSON pour l'analyse de consommation électrique.

OUTILS DISPONIBLES:
{{.tools}}
STRUCTURE:
{
  "metadata": {"plan_id": "plan_001", "question_type": "history", "complexity": "simple"},
  "steps": [{"step_id": 1, "tool_name": "outil", "description": "action", "parameters": {"period": "7d"}, "depends_on": []}],
  "summary": "résumé"
}

RÈGLES: JSON uniquement. Utilisez seulement les outils listés.

"{{.question}}" → JSON:`

var planSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["steps"],
  "properties": {
    "metadata": {"type": "object"},
    "summary": {"type": "string"},
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["step_id", "tool_name"],
        "properties": {
          "step_id": {"type": "integer", "minimum": 1},
          "tool_name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "parameters": {"type": "object"},
          "depends_on": {"type": ["array", "null"], "items": {"type": "integer"}}
        }
      }
    }
  }
}`)

// Planner asks the language model for a tool plan.
type Planner struct {
	llm     llms.Model
	catalog *registry.ToolCatalog
	prompt  prompts.PromptTemplate
	timeout time.Duration
	logger  logger.Logger
}

func NewPlanner(llm llms.Model, catalog *registry.ToolCatalog, timeout time.Duration, log logger.Logger) *Planner {
	if catalog == nil {
		catalog = registry.Default()
	}
	return &Planner{
		llm:     llm,
		catalog: catalog,
		prompt:  prompts.NewPromptTemplate(promptTemplate, []string{"tools", "question"}),
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"component": "planner"}),
	}
}

// Plan returns a validated plan for the question.
func (p *Planner) Plan(ctx context.Context, question string) (*models.Plan, error) {
	plan, err := p.plan(ctx, question)
	if err != nil {
		metrics.LLMCalls.WithLabelValues("planning", "error").Inc()
		p.logger.Warn("plan generation failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	metrics.LLMCalls.WithLabelValues("planning", "success").Inc()
	p.logger.Info("plan generated", map[string]interface{}{
		"planId": plan.Metadata.PlanID,
		"steps":  len(plan.Steps),
		"tool":   plan.Steps[0].ToolName,
	})
	return plan, nil
}

func (p *Planner) plan(ctx context.Context, question string) (*models.Plan, error) {
	if p.llm == nil {
		return nil, fmt.Errorf("%w: no language model configured", ErrNoModel)
	}
	prompt, err := p.prompt.Format(map[string]any{
		"tools":    p.catalog.PromptList(),
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	raw, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || errors.Normalize(err).Code == errors.ErrCodeLLMTimeout {
			return nil, errors.NewLLMTimeoutError()
		}
		return nil, errors.NewLLMRequestFailedError(err)
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		return nil, err
	}
	plan.Metadata.QuestionContext = question
	return plan, nil
}

// ParsePlan extracts the JSON object from a model answer and validates it.
func ParsePlan(raw string) (*models.Plan, error) {
	body := cleanJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrPlanMalformed)
	}

	res := planSchema.ValidateJSON([]byte(body))
	if !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrPlanInvalid, strings.Join(res.GetErrorMessages(), "; "))
	}

	var plan models.Plan
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanMalformed, err)
	}
	if err := ValidateStructure(&plan); err != nil {
		return nil, err
	}
	if plan.Metadata.PlanID == "" {
		plan.Metadata.PlanID = uuid.NewString()
	}
	return &plan, nil
}

func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// ValidateStructure checks step ids are unique, dependencies exist and the
// dependency graph has no cycle.
func ValidateStructure(plan *models.Plan) error {
	if plan == nil || len(plan.Steps) == 0 {
		return fmt.Errorf("%w: plan has no steps", ErrPlanInvalid)
	}

	deps := make(map[int][]int, len(plan.Steps))
	for _, s := range plan.Steps {
		if _, dup := deps[s.StepID]; dup {
			return fmt.Errorf("%w: duplicate step id %d", ErrPlanInvalid, s.StepID)
		}
		deps[s.StepID] = s.DependsOn
	}
	for id, ds := range deps {
		for _, d := range ds {
			if _, ok := deps[d]; !ok {
				return fmt.Errorf("%w: step %d depends on unknown step %d", ErrPlanInvalid, id, d)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[int]int, len(deps))
	var visit func(id int) bool
	visit = func(id int) bool {
		switch state[id] {
		case visiting:
			return false
		case done:
			return true
		}
		state[id] = visiting
		for _, d := range deps[id] {
			if !visit(d) {
				return false
			}
		}
		state[id] = done
		return true
	}
	for _, s := range plan.Steps {
		if !visit(s.StepID) {
			return fmt.Errorf("%w: dependency cycle through step %d", ErrPlanInvalid, s.StepID)
		}
	}
	return nil
}
