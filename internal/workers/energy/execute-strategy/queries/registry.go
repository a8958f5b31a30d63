// internal/workers/energy/execute-strategy/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"energy-agent/internal/models"
)

var (
	ErrInvalidParams = errors.New("invalid tool parameters")
	ErrInvalidPeriod = errors.New("unsupported period")
)

// Env carries the settings a query needs besides its parameters.
type Env struct {
	Tariff float64 // €/kWh
}

// ToolFunc runs one read-only aggregation for a tool.
type ToolFunc func(ctx context.Context, db *sql.DB, env Env, params models.ToolParams) (models.Payload, error)

var Registry = map[models.ToolName]ToolFunc{
	models.ToolAggregate:            Aggregate,
	models.ToolAggregateTemporal:    Aggregate,
	models.ToolAggregateMoyenne:     Moyenne,
	models.ToolAggregateGranularity: Granularity,
	models.ToolZoneComparison:       ZoneComparison,
	models.ToolSeasonalComparison:   SeasonalComparison,
	models.ToolTemporalComparison:   TemporalComparison,
	models.ToolWeekdayComparison:    WeekdayComparison,
	models.ToolCost:                 Cost,
}

// Lookup returns the function registered for the tool.
func Lookup(tool models.ToolName) (ToolFunc, error) {
	fn, ok := Registry[tool]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTool, tool)
	}
	return fn, nil
}

func invalid(tool models.ToolName, p models.ToolParams) error {
	return fmt.Errorf("%w: %s cannot run with %T", ErrInvalidParams, tool, p)
}
