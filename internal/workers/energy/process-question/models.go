// internal/workers/energy/process-question/models.go
package processquestion

import "energy-agent/internal/models"

type Input struct {
	RequestID string `json:"request_id,omitempty"`
	Question  string `json:"question"`
}

type Output struct {
	Response *models.StandardResponse `json:"response"`
}
