// internal/models/strategy.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownTool = errors.New("UNKNOWN_TOOL")

type ToolName string

const (
	ToolAggregateMoyenne     ToolName = "aggregate_moyenne"
	ToolAggregateGranularity ToolName = "aggregate_granularity"
	ToolAggregateTemporal    ToolName = "aggregate_temporal"
	ToolSeasonalComparison   ToolName = "seasonal_comparison"
	ToolTemporalComparison   ToolName = "temporal_comparison"
	ToolWeekdayComparison    ToolName = "weekday_comparison"
	ToolZoneComparison       ToolName = "zone_comparison"
	ToolCost                 ToolName = "cost"
	ToolAggregate            ToolName = "aggregate"
)

// ToolNames lists every executable tool.
func ToolNames() []ToolName {
	return []ToolName{
		ToolAggregateMoyenne,
		ToolAggregateGranularity,
		ToolAggregateTemporal,
		ToolSeasonalComparison,
		ToolTemporalComparison,
		ToolWeekdayComparison,
		ToolZoneComparison,
		ToolCost,
		ToolAggregate,
	}
}

func ParseToolName(s string) (ToolName, error) {
	for _, t := range ToolNames() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

type ResponseFormat string

const (
	FormatMoyenne     ResponseFormat = "moyenne"
	FormatGranularity ResponseFormat = "granularity"
	FormatTemporal    ResponseFormat = "temporal"
	FormatComparison  ResponseFormat = "comparison"
	FormatZones       ResponseFormat = "zones"
	FormatCost        ResponseFormat = "cost"
	FormatConsumption ResponseFormat = "consumption"
)

// ToolParams is implemented by the parameter set of each tool.
type ToolParams interface {
	Tool() ToolName
}

type MoyenneParams struct {
	Period      Period      `json:"period"`
	Granularity Granularity `json:"granularity"`
	Aggregation string      `json:"aggregation"`
	Metric      string      `json:"metric"`
}

func (MoyenneParams) Tool() ToolName { return ToolAggregateMoyenne }

type GranularityParams struct {
	Granularity    Period `json:"granularity"`
	AnalysisPeriod Period `json:"analysis_period"`
	Aggregation    string `json:"aggregation"`
}

func (GranularityParams) Tool() ToolName { return ToolAggregateGranularity }

type TemporalParams struct {
	Period      Period `json:"period"`
	Aggregation string `json:"aggregation"`
}

func (TemporalParams) Tool() ToolName { return ToolAggregateTemporal }

type SeasonalComparisonParams struct {
	Seasons []string `json:"seasons"`
}

func (SeasonalComparisonParams) Tool() ToolName { return ToolSeasonalComparison }

type TemporalComparisonParams struct {
	Periods []Period `json:"periods"`
}

func (TemporalComparisonParams) Tool() ToolName { return ToolTemporalComparison }

type WeekdayComparisonParams struct {
	Groups []string `json:"groups"`
	Period Period   `json:"period"`
}

func (WeekdayComparisonParams) Tool() ToolName { return ToolWeekdayComparison }

type ZoneComparisonParams struct {
	Period Period `json:"period"`
}

func (ZoneComparisonParams) Tool() ToolName { return ToolZoneComparison }

type CostParams struct {
	Period          Period   `json:"period"`
	CalculationType string   `json:"calculation_type"`
	TargetSavings   *float64 `json:"target_savings,omitempty"`
	Tariff          *float64 `json:"tariff,omitempty"`
}

func (CostParams) Tool() ToolName { return ToolCost }

// AggregateParams drives the generic aggregate tool. Extra keeps planner
// parameters that have no dedicated field.
type AggregateParams struct {
	Period      Period         `json:"period"`
	Aggregation string         `json:"aggregation,omitempty"`
	Metric      string         `json:"metric,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

func (AggregateParams) Tool() ToolName { return ToolAggregate }

// NewToolParams returns an empty parameter set for the tool.
func NewToolParams(t ToolName) (ToolParams, error) {
	switch t {
	case ToolAggregateMoyenne:
		return &MoyenneParams{}, nil
	case ToolAggregateGranularity:
		return &GranularityParams{}, nil
	case ToolAggregateTemporal:
		return &TemporalParams{}, nil
	case ToolSeasonalComparison:
		return &SeasonalComparisonParams{}, nil
	case ToolTemporalComparison:
		return &TemporalComparisonParams{}, nil
	case ToolWeekdayComparison:
		return &WeekdayComparisonParams{}, nil
	case ToolZoneComparison:
		return &ZoneComparisonParams{}, nil
	case ToolCost:
		return &CostParams{}, nil
	case ToolAggregate:
		return &AggregateParams{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, t)
}

// ExecutionStrategy is the executable plan for one question: exactly one
// tool with the parameters of that tool.
type ExecutionStrategy struct {
	Tool             ToolName
	Params           ToolParams
	ExpectedFormat   ResponseFormat
	ResponseTemplate string
}

type strategyJSON struct {
	ToolName         ToolName        `json:"tool_name"`
	Parameters       json.RawMessage `json:"parameters"`
	ExpectedFormat   ResponseFormat  `json:"expected_format"`
	ResponseTemplate string          `json:"response_template,omitempty"`
}

func (s ExecutionStrategy) MarshalJSON() ([]byte, error) {
	params, err := json.Marshal(s.Params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(strategyJSON{
		ToolName:         s.Tool,
		Parameters:       params,
		ExpectedFormat:   s.ExpectedFormat,
		ResponseTemplate: s.ResponseTemplate,
	})
}

func (s *ExecutionStrategy) UnmarshalJSON(data []byte) error {
	var raw strategyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tool, err := ParseToolName(string(raw.ToolName))
	if err != nil {
		return err
	}
	params, err := NewToolParams(tool)
	if err != nil {
		return err
	}
	if len(raw.Parameters) > 0 && string(raw.Parameters) != "null" {
		if err := json.Unmarshal(raw.Parameters, params); err != nil {
			return fmt.Errorf("invalid parameters for %s: %w", tool, err)
		}
	}
	s.Tool = tool
	s.Params = derefParams(params)
	s.ExpectedFormat = raw.ExpectedFormat
	s.ResponseTemplate = raw.ResponseTemplate
	return nil
}

// derefParams stores parameter sets by value so type switches match the
// values the strategy builder produces.
func derefParams(p ToolParams) ToolParams {
	switch v := p.(type) {
	case *MoyenneParams:
		return *v
	case *GranularityParams:
		return *v
	case *TemporalParams:
		return *v
	case *SeasonalComparisonParams:
		return *v
	case *TemporalComparisonParams:
		return *v
	case *WeekdayComparisonParams:
		return *v
	case *ZoneComparisonParams:
		return *v
	case *CostParams:
		return *v
	case *AggregateParams:
		return *v
	}
	return p
}
