// internal/workers/energy/build-response/models.go
package buildresponse

import "energy-agent/internal/models"

type Input struct {
	Question   string                     `json:"question"`
	Result     models.ExecutionResult     `json:"execution_result"`
	Strategy   models.ExecutionStrategy   `json:"execution_strategy"`
	Validation *models.SemanticValidation `json:"semantic_validation,omitempty"`
}

type Output struct {
	Response models.StandardResponse `json:"response"`
}
