// internal/workers/energy/execute-strategy/queries/comparison.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"energy-agent/internal/common/database"
	"energy-agent/internal/models"
)

// ZoneComparison splits consumption over the three sub-meters, the
// remainder going to "autres".
func ZoneComparison(ctx context.Context, db *sql.DB, _ Env, params models.ToolParams) (models.Payload, error) {
	p, ok := params.(models.ZoneComparisonParams)
	if !ok {
		return nil, invalid(models.ToolZoneComparison, params)
	}
	w, err := ResolveWindow(p.Period)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT COALESCE(SUM(sub_metering_1_kwh), 0), COALESCE(SUM(sub_metering_2_kwh), 0),
	COALESCE(SUM(sub_metering_3_kwh), 0), COALESCE(SUM(energy_total_kwh), 0)
FROM %s WHERE %s`, database.EnergyTable, w.Clause)

	var cuisine, buanderie, chauffage, total float64
	if err := db.QueryRowContext(ctx, query, w.Args...).Scan(&cuisine, &buanderie, &chauffage, &total); err != nil {
		return nil, err
	}

	zones := map[string]float64{
		"cuisine":   cuisine,
		"buanderie": buanderie,
		"chauffage": chauffage,
		"autres":    math.Max(0, total-(cuisine+buanderie+chauffage)),
	}
	pct := make(map[string]float64, len(zones))
	for name, v := range zones {
		if total > 0 {
			pct[name] = v / total * 100
		} else {
			pct[name] = 0
		}
	}
	return models.ZonesPayload{Zones: zones, Total: total, Percentages: pct, Period: p.Period}, nil
}

// SeasonalComparison sums consumption per meteorological season over the
// last year.
func SeasonalComparison(ctx context.Context, db *sql.DB, _ Env, params models.ToolParams) (models.Payload, error) {
	p, ok := params.(models.SeasonalComparisonParams)
	if !ok {
		return nil, invalid(models.ToolSeasonalComparison, params)
	}
	for _, s := range p.Seasons {
		if _, ok := seasonIndex[s]; !ok {
			return nil, fmt.Errorf("%w: unknown season %q", ErrInvalidParams, s)
		}
	}

	w, err := ResolveWindow(models.Period365Days)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT
	COALESCE(SUM(energy_total_kwh) FILTER (WHERE EXTRACT(MONTH FROM timestamp) IN (6, 7, 8)), 0),
	COALESCE(SUM(energy_total_kwh) FILTER (WHERE EXTRACT(MONTH FROM timestamp) IN (12, 1, 2)), 0),
	COALESCE(SUM(energy_total_kwh) FILTER (WHERE EXTRACT(MONTH FROM timestamp) IN (3, 4, 5)), 0),
	COALESCE(SUM(energy_total_kwh) FILTER (WHERE EXTRACT(MONTH FROM timestamp) IN (9, 10, 11)), 0),
	COUNT(*)
FROM %s WHERE %s`, database.EnergyTable, w.Clause)

	var sums [4]float64
	var count int64
	if err := db.QueryRowContext(ctx, query, w.Args...).Scan(&sums[0], &sums[1], &sums[2], &sums[3], &count); err != nil {
		return nil, err
	}

	out := models.SeasonalPayload{Seasons: map[string]float64{}, Period: models.Period365Days}
	for _, s := range p.Seasons {
		v := sums[seasonIndex[s]]
		out.Seasons[s] = v
		out.Summary.Total += v
	}
	out.Summary.Count = count
	return out, nil
}

var seasonIndex = map[string]int{"summer": 0, "winter": 1, "spring": 2, "autumn": 3}

// TemporalComparison compares the consumption of two periods, the first
// being the current one.
func TemporalComparison(ctx context.Context, db *sql.DB, _ Env, params models.ToolParams) (models.Payload, error) {
	p, ok := params.(models.TemporalComparisonParams)
	if !ok || len(p.Periods) != 2 {
		return nil, invalid(models.ToolTemporalComparison, params)
	}

	current, _, err := sumConsumption(ctx, db, p.Periods[0])
	if err != nil {
		return nil, err
	}
	previous, _, err := sumConsumption(ctx, db, p.Periods[1])
	if err != nil {
		return nil, err
	}

	out := models.TemporalComparisonPayload{
		CurrentPeriod:  current,
		PreviousPeriod: previous,
		Periods:        p.Periods,
		Comparison:     "equal",
	}
	switch {
	case current > previous:
		out.Comparison = "higher"
	case current < previous:
		out.Comparison = "lower"
	}
	if previous > 0 {
		out.ChangePercent = (current - previous) / previous * 100
	}
	return out, nil
}

// WeekdayComparison compares the average daily consumption of weekend days
// and weekdays.
func WeekdayComparison(ctx context.Context, db *sql.DB, _ Env, params models.ToolParams) (models.Payload, error) {
	p, ok := params.(models.WeekdayComparisonParams)
	if !ok {
		return nil, invalid(models.ToolWeekdayComparison, params)
	}
	period := p.Period
	if period == "" {
		period = models.Period30Days
	}
	w, err := ResolveWindow(period)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT
	COALESCE(AVG(day_total) FILTER (WHERE weekend), 0),
	COALESCE(AVG(day_total) FILTER (WHERE NOT weekend), 0),
	COALESCE(SUM(day_total), 0),
	COUNT(*)
FROM (
	SELECT DATE(timestamp) AS day, EXTRACT(ISODOW FROM timestamp) >= 6 AS weekend, SUM(energy_total_kwh) AS day_total
	FROM %s
	WHERE %s
	GROUP BY 1, 2
) days`, database.EnergyTable, w.Clause)

	var weekend, weekday float64
	out := models.WeekdayPayload{Groups: map[string]float64{}, Period: period}
	if err := db.QueryRowContext(ctx, query, w.Args...).Scan(&weekend, &weekday, &out.Summary.Total, &out.Summary.Count); err != nil {
		return nil, err
	}

	groups := p.Groups
	if len(groups) == 0 {
		groups = []string{"weekend", "weekday"}
	}
	for _, g := range groups {
		switch g {
		case "weekend":
			out.Groups[g] = weekend
		case "weekday":
			out.Groups[g] = weekday
		default:
			return nil, fmt.Errorf("%w: unknown group %q", ErrInvalidParams, g)
		}
	}
	return out, nil
}
