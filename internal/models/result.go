// internal/models/result.go
package models

import (
	"encoding/json"
	"fmt"
)

type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionError   ExecutionStatus = "error"
)

// Payload is the tool-specific data of a successful execution.
type Payload interface {
	payload()
}

type Summary struct {
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

type AggregatePayload struct {
	Period      Period  `json:"period"`
	Aggregation string  `json:"aggregation"`
	Metric      string  `json:"metric"`
	Summary     Summary `json:"summary"`
}

type MoyennePayload struct {
	Value       float64     `json:"value"`
	Granularity Granularity `json:"granularity"`
	Period      Period      `json:"period"`
	Aggregation string      `json:"aggregation"`
	Unit        string      `json:"unit"`
	Summary     Summary     `json:"summary"`
}

type ZonesPayload struct {
	Zones       map[string]float64 `json:"zones"`
	Total       float64            `json:"total"`
	Percentages map[string]float64 `json:"percentages"`
	Period      Period             `json:"period"`
}

type CostPayload struct {
	Value               float64  `json:"value"`
	ConsumptionKWh      float64  `json:"consumption_kwh"`
	Tariff              float64  `json:"tariff"`
	Cost                float64  `json:"cost"`
	FormattedCost       string   `json:"formatted_cost"`
	Period              Period   `json:"period"`
	CalculationType     string   `json:"calculation_type"`
	TargetSavings       *float64 `json:"target_savings,omitempty"`
	ReductionNeededKWh  *float64 `json:"reduction_needed_kwh,omitempty"`
	ReductionPercentage *float64 `json:"reduction_percentage,omitempty"`
	Advice              string   `json:"advice,omitempty"`
}

type SeasonalPayload struct {
	Seasons map[string]float64 `json:"seasons"`
	Summary Summary            `json:"summary"`
	Period  Period             `json:"period"`
}

type TemporalComparisonPayload struct {
	CurrentPeriod  float64  `json:"current_period"`
	PreviousPeriod float64  `json:"previous_period"`
	Periods        []Period `json:"periods"`
	Comparison     string   `json:"comparison"`
	ChangePercent  float64  `json:"change_percent"`
}

type WeekdayPayload struct {
	Groups  map[string]float64 `json:"groups"`
	Summary Summary            `json:"summary"`
	Period  Period             `json:"period"`
}

func (AggregatePayload) payload()          {}
func (MoyennePayload) payload()            {}
func (ZonesPayload) payload()              {}
func (CostPayload) payload()               {}
func (SeasonalPayload) payload()           {}
func (TemporalComparisonPayload) payload() {}
func (WeekdayPayload) payload()            {}

// NewPayload returns an empty payload of the shape the tool produces.
func NewPayload(t ToolName) (Payload, error) {
	switch t {
	case ToolAggregate, ToolAggregateTemporal:
		return &AggregatePayload{}, nil
	case ToolAggregateMoyenne, ToolAggregateGranularity:
		return &MoyennePayload{}, nil
	case ToolZoneComparison:
		return &ZonesPayload{}, nil
	case ToolCost:
		return &CostPayload{}, nil
	case ToolSeasonalComparison:
		return &SeasonalPayload{}, nil
	case ToolTemporalComparison:
		return &TemporalComparisonPayload{}, nil
	case ToolWeekdayComparison:
		return &WeekdayPayload{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, t)
}

// ExecutionResult is the outcome of running a strategy. Backend failures are
// carried as Status error with a Message, never as a Go error.
type ExecutionResult struct {
	Status  ExecutionStatus
	Tool    ToolName
	Source  string
	Payload Payload
	Message string
}

func Failed(tool ToolName, msg string) ExecutionResult {
	return ExecutionResult{Status: ExecutionError, Tool: tool, Message: msg}
}

func (r ExecutionResult) Succeeded() bool {
	return r.Status == ExecutionSuccess
}

// AsMap renders the nested result dictionary used by value extraction:
// {status, data, tool_used, source} or {status: error, message}.
func (r ExecutionResult) AsMap() map[string]any {
	if !r.Succeeded() {
		return map[string]any{
			"status":  string(ExecutionError),
			"message": r.Message,
		}
	}
	data := map[string]any{}
	if r.Payload != nil {
		if b, err := json.Marshal(r.Payload); err == nil {
			_ = json.Unmarshal(b, &data)
		}
	}
	return map[string]any{
		"status":    string(ExecutionSuccess),
		"data":      data,
		"tool_used": string(r.Tool),
		"source":    r.Source,
	}
}

type resultJSON struct {
	Status  ExecutionStatus `json:"status"`
	Tool    ToolName        `json:"tool_used,omitempty"`
	Source  string          `json:"source,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	out := resultJSON{Status: r.Status, Tool: r.Tool, Source: r.Source, Message: r.Message}
	if r.Payload != nil {
		b, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, err
		}
		out.Data = b
	}
	return json.Marshal(out)
}

func (r *ExecutionResult) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Status = raw.Status
	r.Tool = raw.Tool
	r.Source = raw.Source
	r.Message = raw.Message
	r.Payload = nil
	if raw.Status != ExecutionSuccess || len(raw.Data) == 0 {
		return nil
	}
	p, err := NewPayload(raw.Tool)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw.Data, p); err != nil {
		return fmt.Errorf("invalid %s payload: %w", raw.Tool, err)
	}
	r.Payload = derefPayload(p)
	return nil
}

func derefPayload(p Payload) Payload {
	switch v := p.(type) {
	case *AggregatePayload:
		return *v
	case *MoyennePayload:
		return *v
	case *ZonesPayload:
		return *v
	case *CostPayload:
		return *v
	case *SeasonalPayload:
		return *v
	case *TemporalComparisonPayload:
		return *v
	case *WeekdayPayload:
		return *v
	}
	return p
}
