// internal/models/intent.go
package models

type IntentType string

const (
	IntentAverage          IntentType = "average"
	IntentTotal            IntentType = "total"
	IntentComparison       IntentType = "comparison"
	IntentCost             IntentType = "cost"
	IntentTemporalSpecific IntentType = "temporal_specific"
	IntentGranularity      IntentType = "granularity"
	IntentForecast         IntentType = "forecast"
)

type Temporal string

const (
	TemporalHour  Temporal = "hour"
	TemporalDay   Temporal = "day"
	TemporalWeek  Temporal = "week"
	TemporalMonth Temporal = "month"
	TemporalYear  Temporal = "year"
)

type Aggregation string

const (
	AggregationSum  Aggregation = "sum"
	AggregationMean Aggregation = "mean"
	AggregationMax  Aggregation = "max"
	AggregationMin  Aggregation = "min"
)

type Entity string

const (
	EntityConsumption Entity = "consumption"
	EntityPrice       Entity = "price"
	EntityZone        Entity = "zone"
)

// QuestionIntent is the structured reading of a question. Values are never
// mutated after classification; the strategy builder works on a corrected copy.
type QuestionIntent struct {
	IntentType  IntentType  `json:"intent_type"`
	Temporal    Temporal    `json:"temporal"`
	Aggregation Aggregation `json:"aggregation"`
	Entities    []Entity    `json:"entities"`
	Confidence  float64     `json:"confidence"`
}

// WithIntentType returns a copy carrying a different intent type.
func (q QuestionIntent) WithIntentType(t IntentType) QuestionIntent {
	out := q
	out.Entities = append([]Entity(nil), q.Entities...)
	out.IntentType = t
	return out
}

// WithTemporal returns a copy carrying a different temporal scope.
func (q QuestionIntent) WithTemporal(t Temporal) QuestionIntent {
	out := q
	out.Entities = append([]Entity(nil), q.Entities...)
	out.Temporal = t
	return out
}

// TemporalFromPeriod maps a validated period to the temporal scope it covers.
func TemporalFromPeriod(p Period) Temporal {
	switch p {
	case PeriodCurrentMonth, PeriodLastMonth, Period30Days:
		return TemporalMonth
	case PeriodCurrentYear, PeriodLastYear:
		return TemporalYear
	case PeriodCurrentWeek, Period7Days:
		return TemporalWeek
	case PeriodYesterday:
		return TemporalDay
	default:
		return TemporalWeek
	}
}
