// internal/workers/energy/validate-period/models.go
package validateperiod

import "energy-agent/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Validation models.SemanticValidation `json:"semantic_validation"`
	Degraded   bool                      `json:"degraded"`
}
