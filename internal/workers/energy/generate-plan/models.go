// internal/workers/energy/generate-plan/models.go
package generateplan

import "energy-agent/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Plan *models.Plan `json:"raw_plan"`
}
