// internal/models/response.go
package models

type ResponseStatus string

const (
	StatusSuccess    ResponseStatus = "success"
	StatusError      ResponseStatus = "error"
	StatusOutOfScope ResponseStatus = "out_of_scope"
)

type ResponseType string

const (
	TypeConsumption ResponseType = "consumption"
	TypeMoyenne     ResponseType = "moyenne"
	TypeCost        ResponseType = "cost"
	TypeZones       ResponseType = "zones"
	TypeComparison  ResponseType = "comparison"
	TypeOutOfScope  ResponseType = "out_of_scope"
	TypeError       ResponseType = "error"
)

// ResponseTypeFor maps a response format to the type reported to callers.
func ResponseTypeFor(f ResponseFormat) ResponseType {
	switch f {
	case FormatMoyenne, FormatGranularity:
		return TypeMoyenne
	case FormatCost:
		return TypeCost
	case FormatZones:
		return TypeZones
	case FormatComparison:
		return TypeComparison
	default:
		return TypeConsumption
	}
}

// StandardResponse is the answer returned to every caller surface.
type StandardResponse struct {
	Question           string         `json:"question"`
	Answer             string         `json:"answer"`
	Value              float64        `json:"value"`
	Unit               string         `json:"unit"`
	Period             string         `json:"period"`
	Status             ResponseStatus `json:"status"`
	Type               ResponseType   `json:"type"`
	Aggregation        string         `json:"aggregation,omitempty"`
	Source             string         `json:"source"`
	Metadata           map[string]any `json:"metadata"`
	AgentChain         []string       `json:"agent_chain"`
	ScopeType          ScopeType      `json:"scope_type,omitempty"`
	HelpfulSuggestions []string       `json:"helpful_suggestions,omitempty"`
	Errors             []string       `json:"errors,omitempty"`
}
