package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodCode(t *testing.T) {
	c, ok := ParsePeriodCode("  last_7_days\n")
	assert.True(t, ok)
	assert.Equal(t, CodeLast7Days, c)

	p, ok := c.Period()
	assert.True(t, ok)
	assert.Equal(t, Period7Days, p)

	c, ok = ParsePeriodCode("NEXT_CENTURY")
	assert.False(t, ok)
	assert.Equal(t, CodeUnknown, c)

	assert.Len(t, PeriodCodes(), 18)
}

func TestPeriodDays(t *testing.T) {
	tests := []struct {
		period Period
		days   int
		ok     bool
	}{
		{Period7Days, 7, true},
		{Period1825Days, 1825, true},
		{DaysPeriod(84), 84, true},
		{PeriodDayBeforeYesterday, 0, false},
		{PeriodCurrentMonth, 0, false},
		{Period("0d"), 0, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			n, ok := tt.period.Days()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.days, n)
		})
	}
}

func TestExecutionStrategyJSON(t *testing.T) {
	raw := `{"tool_name":"aggregate_moyenne","parameters":{"period":"30d","granularity":"jour","aggregation":"mean","metric":"consumption"},"expected_format":"moyenne"}`

	var s ExecutionStrategy
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, ToolAggregateMoyenne, s.Tool)
	assert.Equal(t, FormatMoyenne, s.ExpectedFormat)

	params, ok := s.Params.(MoyenneParams)
	require.True(t, ok)
	assert.Equal(t, Period30Days, params.Period)
	assert.Equal(t, GranularityDay, params.Granularity)
}

func TestExecutionStrategyJSON_UnknownTool(t *testing.T) {
	var s ExecutionStrategy
	err := json.Unmarshal([]byte(`{"tool_name":"drop_tables","parameters":{}}`), &s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
}

func TestExecutionResultAsMap(t *testing.T) {
	ok := ExecutionResult{
		Status: ExecutionSuccess,
		Tool:   ToolAggregate,
		Source: "energy-agent",
		Payload: AggregatePayload{
			Period:      Period7Days,
			Aggregation: "sum",
			Metric:      "consumption",
			Summary:     Summary{Count: 10, Total: 42.5},
		},
	}
	m := ok.AsMap()
	assert.Equal(t, "success", m["status"])
	assert.Equal(t, "aggregate", m["tool_used"])
	data := m["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	assert.Equal(t, 42.5, summary["total"])

	failed := Failed(ToolCost, "connection refused").AsMap()
	assert.Equal(t, "error", failed["status"])
	assert.Equal(t, "connection refused", failed["message"])
	assert.NotContains(t, failed, "data")
}

func TestExecutionResultJSON_TypedPayload(t *testing.T) {
	in := ExecutionResult{
		Status:  ExecutionSuccess,
		Tool:    ToolTemporalComparison,
		Payload: TemporalComparisonPayload{CurrentPeriod: 120, PreviousPeriod: 100, Comparison: "higher", ChangePercent: 20},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out ExecutionResult
	require.NoError(t, json.Unmarshal(b, &out))
	p, ok := out.Payload.(TemporalComparisonPayload)
	require.True(t, ok)
	assert.Equal(t, "higher", p.Comparison)
}

func TestTemporalFromPeriod(t *testing.T) {
	assert.Equal(t, TemporalMonth, TemporalFromPeriod(PeriodLastMonth))
	assert.Equal(t, TemporalYear, TemporalFromPeriod(PeriodCurrentYear))
	assert.Equal(t, TemporalDay, TemporalFromPeriod(PeriodYesterday))
	assert.Equal(t, TemporalWeek, TemporalFromPeriod(PeriodWeekend))
}
