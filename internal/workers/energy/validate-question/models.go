// internal/workers/energy/validate-question/models.go
package validatequestion

import "energy-agent/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Scope models.ScopeCheck `json:"scope"`
	Valid bool              `json:"valid"`
}
