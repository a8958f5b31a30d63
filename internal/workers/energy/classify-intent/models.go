// internal/workers/energy/classify-intent/models.go
package classifyintent

import "energy-agent/internal/models"

type Input struct {
	Question        string         `json:"question"`
	ValidatedPeriod *models.Period `json:"validated_period,omitempty"`
}

type Output struct {
	Intent models.QuestionIntent `json:"intent"`
	Rule   string                `json:"rule"`
}
