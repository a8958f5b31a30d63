// internal/workers/energy/execute-strategy/queries/aggregate.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"energy-agent/internal/common/database"
	"energy-agent/internal/models"
)

// metricColumns whitelists the columns a metric may read.
var metricColumns = map[string]string{
	"consumption": "energy_total_kwh",
	"power":       "global_active_power_kw",
	"voltage":     "voltage_v",
	"intensity":   "global_intensity_a",
	"cuisine":     "sub_metering_1_kwh",
	"buanderie":   "sub_metering_2_kwh",
	"chauffage":   "sub_metering_3_kwh",
}

var aggregations = map[string]string{
	"sum":  "SUM",
	"mean": "AVG",
	"avg":  "AVG",
	"max":  "MAX",
	"min":  "MIN",
}

func column(metric string) (string, error) {
	if metric == "" {
		metric = "consumption"
	}
	col, ok := metricColumns[strings.ToLower(metric)]
	if !ok {
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidParams, metric)
	}
	return col, nil
}

func aggregation(name string) (string, error) {
	if name == "" {
		name = "sum"
	}
	fn, ok := aggregations[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: unknown aggregation %q", ErrInvalidParams, name)
	}
	return fn, nil
}

// Aggregate serves aggregate and aggregate_temporal: one SUM/AVG/MAX/MIN
// over the window.
func Aggregate(ctx context.Context, db *sql.DB, _ Env, params models.ToolParams) (models.Payload, error) {
	var period models.Period
	var agg, metric string
	switch p := params.(type) {
	case models.AggregateParams:
		period, agg, metric = p.Period, p.Aggregation, p.Metric
		if zone, ok := p.Extra["zone"].(string); ok && zone != "" {
			metric = zone
		}
	case models.TemporalParams:
		period, agg, metric = p.Period, p.Aggregation, "consumption"
	default:
		return nil, invalid(models.ToolAggregate, params)
	}

	col, err := column(metric)
	if err != nil {
		return nil, err
	}
	fn, err := aggregation(agg)
	if err != nil {
		return nil, err
	}
	w, err := ResolveWindow(period)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT COALESCE(%s(%s), 0), COUNT(*) FROM %s WHERE %s", fn, col, database.EnergyTable, w.Clause)

	var out models.AggregatePayload
	if err := db.QueryRowContext(ctx, query, w.Args...).Scan(&out.Summary.Total, &out.Summary.Count); err != nil {
		return nil, err
	}
	out.Period = period
	out.Aggregation = strings.ToLower(agg)
	if out.Aggregation == "" {
		out.Aggregation = "sum"
	}
	out.Metric = metric
	if out.Metric == "" {
		out.Metric = "consumption"
	}
	return out, nil
}

func sumConsumption(ctx context.Context, db *sql.DB, period models.Period) (float64, int64, error) {
	w, err := ResolveWindow(period)
	if err != nil {
		return 0, 0, err
	}
	var (
		total float64
		count int64
	)
	query := "SELECT COALESCE(SUM(energy_total_kwh), 0), COUNT(*) FROM " + database.EnergyTable + " WHERE " + w.Clause
	if err := db.QueryRowContext(ctx, query, w.Args...).Scan(&total, &count); err != nil {
		return 0, 0, err
	}
	return total, count, nil
}
