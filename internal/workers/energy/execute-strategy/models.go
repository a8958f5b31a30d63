// internal/workers/energy/execute-strategy/models.go
package executestrategy

import "energy-agent/internal/models"

type Input struct {
	Strategy models.ExecutionStrategy `json:"execution_strategy"`
}

type Output struct {
	Result models.ExecutionResult `json:"execution_result"`
}
