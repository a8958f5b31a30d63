// internal/workers/energy/execute-strategy/queries/moyenne.go
package queries

import (
	"context"
	"database/sql"
	"fmt"

	"energy-agent/internal/common/database"
	"energy-agent/internal/models"
)

var bucketUnits = map[models.Granularity]string{
	models.GranularityDay:   "day",
	models.GranularityWeek:  "week",
	models.GranularityMonth: "month",
	models.GranularityYear:  "year",
}

var granularityOfCode = map[models.Period]models.Granularity{
	models.PeriodHourly:  models.GranularityHour,
	models.PeriodDaily:   models.GranularityDay,
	models.PeriodWeekly:  models.GranularityWeek,
	models.PeriodMonthly: models.GranularityMonth,
	models.PeriodYearly:  models.GranularityYear,
}

// Moyenne averages consumption per bucket of the requested granularity.
func Moyenne(ctx context.Context, db *sql.DB, _ Env, params models.ToolParams) (models.Payload, error) {
	p, ok := params.(models.MoyenneParams)
	if !ok {
		return nil, invalid(models.ToolAggregateMoyenne, params)
	}
	return average(ctx, db, p.Period, p.Granularity)
}

// Granularity averages consumption per bucket over the analysis window.
func Granularity(ctx context.Context, db *sql.DB, _ Env, params models.ToolParams) (models.Payload, error) {
	p, ok := params.(models.GranularityParams)
	if !ok {
		return nil, invalid(models.ToolAggregateGranularity, params)
	}
	g, ok := granularityOfCode[p.Granularity]
	if !ok {
		return nil, fmt.Errorf("%w: unknown granularity %q", ErrInvalidParams, p.Granularity)
	}
	return average(ctx, db, p.AnalysisPeriod, g)
}

func average(ctx context.Context, db *sql.DB, period models.Period, g models.Granularity) (models.Payload, error) {
	if g == "" {
		g = models.GranularityDay
	}
	w, err := ResolveWindow(period)
	if err != nil {
		return nil, err
	}

	var query string
	if g == models.GranularityHour {
		// rows are 2-hour buckets
		query = fmt.Sprintf(
			"SELECT COALESCE(AVG(energy_total_kwh), 0) / 2, COUNT(*), COALESCE(SUM(energy_total_kwh), 0) FROM %s WHERE %s",
			database.EnergyTable, w.Clause)
	} else {
		unit, ok := bucketUnits[g]
		if !ok {
			return nil, fmt.Errorf("%w: unknown granularity %q", ErrInvalidParams, g)
		}
		query = fmt.Sprintf(`SELECT COALESCE(AVG(bucket_total), 0), COUNT(*), COALESCE(SUM(bucket_total), 0)
FROM (
	SELECT DATE_TRUNC('%s', timestamp) AS bucket, SUM(energy_total_kwh) AS bucket_total
	FROM %s
	WHERE %s
	GROUP BY 1
) buckets`, unit, database.EnergyTable, w.Clause)
	}

	out := models.MoyennePayload{
		Granularity: g,
		Period:      period,
		Aggregation: "mean",
		Unit:        g.Unit(),
	}
	if err := db.QueryRowContext(ctx, query, w.Args...).Scan(&out.Value, &out.Summary.Count, &out.Summary.Total); err != nil {
		return nil, err
	}
	return out, nil
}
