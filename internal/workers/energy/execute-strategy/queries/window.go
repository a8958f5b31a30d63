// internal/workers/energy/execute-strategy/queries/window.go
package queries

import (
	"fmt"

	"energy-agent/internal/models"
)

// Window is a WHERE clause over the timestamp column, always relative to
// CURRENT_DATE. Day counts travel as bind parameters starting at $1.
type Window struct {
	Clause string
	Args   []any
}

const daysBetween = "timestamp >= CURRENT_DATE - make_interval(days => $1) AND timestamp < CURRENT_DATE - make_interval(days => $2)"

var calendarWindows = map[models.Period]string{
	models.PeriodCurrentDay:   "timestamp >= CURRENT_DATE",
	models.PeriodCurrentWeek:  "timestamp >= DATE_TRUNC('week', CURRENT_DATE)",
	models.PeriodCurrentMonth: "timestamp >= DATE_TRUNC('month', CURRENT_DATE)",
	models.PeriodCurrentYear:  "timestamp >= DATE_TRUNC('year', CURRENT_DATE)",
	models.PeriodLastWeek:     "timestamp >= DATE_TRUNC('week', CURRENT_DATE) - INTERVAL '1 week' AND timestamp < DATE_TRUNC('week', CURRENT_DATE)",
	models.PeriodLastMonth:    "timestamp >= DATE_TRUNC('month', CURRENT_DATE) - INTERVAL '1 month' AND timestamp < DATE_TRUNC('month', CURRENT_DATE)",
	models.PeriodLastYear:     "timestamp >= DATE_TRUNC('year', CURRENT_DATE) - INTERVAL '1 year' AND timestamp < DATE_TRUNC('year', CURRENT_DATE)",
	// most recent Saturday or Sunday strictly before today
	models.PeriodSaturday: "DATE(timestamp) = CURRENT_DATE - (EXTRACT(DOW FROM CURRENT_DATE)::int + 1)",
	models.PeriodSunday:   "DATE(timestamp) = CURRENT_DATE - ((EXTRACT(DOW FROM CURRENT_DATE)::int + 6) % 7 + 1)",
}

// ResolveWindow turns a period into its SQL window. "<n>d" covers the n
// complete days before today.
func ResolveWindow(p models.Period) (Window, error) {
	if p == models.PeriodDayBeforeYesterday {
		return Window{Clause: daysBetween, Args: []any{2, 1}}, nil
	}
	if n, ok := p.Days(); ok {
		return Window{Clause: daysBetween, Args: []any{n, 0}}, nil
	}
	if clause, ok := calendarWindows[p]; ok {
		return Window{Clause: clause}, nil
	}
	return Window{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
}
