// internal/models/validation.go
package models

type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// SemanticValidation is the period resolved for a question by the LLM validator.
type SemanticValidation struct {
	OriginalQuestion   string     `json:"original_question"`
	DetectedPeriodCode PeriodCode `json:"detected_period_code"`
	ValidatedPeriod    Period     `json:"validated_period"`
	Confidence         Confidence `json:"confidence"`
	Error              string     `json:"error,omitempty"`
}

// ValidationOutcome carries the validation together with its degraded state.
// A degraded outcome still holds a usable fallback validation.
type ValidationOutcome struct {
	Validation SemanticValidation `json:"validation"`
	Degraded   bool               `json:"degraded"`
	Err        error              `json:"-"`
}

type ScopeType string

const (
	ScopeEnergy    ScopeType = "energy"
	ScopeNonEnergy ScopeType = "non_energy"
	ScopeCost      ScopeType = "cost"
	ScopeUnknown   ScopeType = "unknown"
	ScopeInvalid   ScopeType = "invalid"
)

// ScopeCheck is the verdict of the question gate.
type ScopeCheck struct {
	Valid      bool      `json:"valid"`
	ScopeType  ScopeType `json:"scope_type"`
	Reason     string    `json:"reason"`
	Message    string    `json:"message,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// Invalid reports a malformed question, as opposed to a well formed one
// that falls outside the domain.
func (s ScopeCheck) Invalid() bool {
	return s.ScopeType == ScopeInvalid
}
