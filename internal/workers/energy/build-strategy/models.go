// internal/workers/energy/build-strategy/models.go
package buildstrategy

import "energy-agent/internal/models"

type Input struct {
	Question        string                `json:"question"`
	Intent          models.QuestionIntent `json:"intent"`
	ValidatedPeriod models.Period         `json:"validated_period,omitempty"`
	Plan            *models.Plan          `json:"raw_plan,omitempty"`
}

type Output struct {
	Strategy        models.ExecutionStrategy `json:"execution_strategy"`
	CorrectedIntent models.IntentType        `json:"corrected_intent"`
}
