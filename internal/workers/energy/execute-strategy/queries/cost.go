// internal/workers/energy/execute-strategy/queries/cost.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"energy-agent/internal/models"
)

const defaultTariff = 0.20

// Cost prices the consumption of the period and, with a savings target,
// the reduction needed to reach it.
func Cost(ctx context.Context, db *sql.DB, env Env, params models.ToolParams) (models.Payload, error) {
	p, ok := params.(models.CostParams)
	if !ok {
		return nil, invalid(models.ToolCost, params)
	}

	tariff := env.Tariff
	if p.Tariff != nil {
		tariff = *p.Tariff
	}
	if tariff <= 0 {
		tariff = defaultTariff
	}

	kwh, _, err := sumConsumption(ctx, db, p.Period)
	if err != nil {
		return nil, err
	}

	cost := kwh * tariff
	out := models.CostPayload{
		Value:           cost,
		ConsumptionKWh:  kwh,
		Tariff:          tariff,
		Cost:            cost,
		FormattedCost:   fmt.Sprintf("%.2f€", cost),
		Period:          p.Period,
		CalculationType: p.CalculationType,
	}

	if p.TargetSavings != nil && *p.TargetSavings > 0 {
		target := *p.TargetSavings
		reduction := target / tariff
		pct := 0.0
		if kwh > 0 {
			pct = reduction / kwh * 100
		}
		out.TargetSavings = &target
		out.ReductionNeededKWh = &reduction
		out.ReductionPercentage = &pct
		out.Advice = fmt.Sprintf("Réduire de %.1f kWh pour économiser %s€", reduction, strconv.FormatFloat(target, 'f', -1, 64))
	}
	return out, nil
}
