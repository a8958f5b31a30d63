// internal/workers/energy/suggest-questions/models.go
package suggestquestions

import "energy-agent/internal/models"

type Input struct {
	Question  string           `json:"question"`
	ScopeType models.ScopeType `json:"scope_type"`
}

type Output struct {
	Suggestions []string `json:"helpful_suggestions"`
	Source      string   `json:"suggestion_source"`
}
