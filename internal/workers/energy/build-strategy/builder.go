// internal/workers/energy/build-strategy/builder.go
package buildstrategy

import (
	"fmt"
	"strings"

	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"
	"energy-agent/pkg/registry"
)

// calendarComparisonTriggers keep a calendar-period question a comparison.
var calendarComparisonTriggers = []string{"plus élevée", "différente", "versus"}

// Builder turns a classified question into an execution strategy.
type Builder struct {
	catalog *registry.ToolCatalog
	logger  logger.Logger
}

func NewBuilder(catalog *registry.ToolCatalog, log logger.Logger) *Builder {
	if catalog == nil {
		catalog = registry.Default()
	}
	return &Builder{catalog: catalog, logger: log.With(map[string]interface{}{"component": "strategy_builder"})}
}

// Corrected applies the validated period to the classified intent. An
// average question stays an average whatever the period says.
func Corrected(intent models.QuestionIntent, validated models.Period, question string) models.QuestionIntent {
	if validated == "" || intent.IntentType == models.IntentAverage {
		return intent
	}
	switch {
	case validated.IsGranularity():
		return intent.WithIntentType(models.IntentGranularity)
	case validated.IsNamedDay():
		return intent.WithIntentType(models.IntentTemporalSpecific)
	case validated.IsCalendar():
		if intent.IntentType == models.IntentComparison && !containsAny(strings.ToLower(question), calendarComparisonTriggers) {
			return intent.WithIntentType(models.IntentTemporalSpecific)
		}
	}
	return intent
}

// NeedsPlan reports whether the corrected intent falls through to the
// default branch, which reads its tool from the planner.
func NeedsPlan(intent models.QuestionIntent, validated models.Period, question string) bool {
	switch Corrected(intent, validated, question).IntentType {
	case models.IntentAverage, models.IntentGranularity, models.IntentTemporalSpecific,
		models.IntentComparison, models.IntentCost:
		return false
	}
	return true
}

// Build returns the strategy for the question. validated is empty when no
// period was validated; plan may be nil. The only error is an unresolvable
// tool from the plan.
func (b *Builder) Build(intent models.QuestionIntent, validated models.Period, question string, plan *models.Plan) (models.ExecutionStrategy, error) {
	corrected := Corrected(intent, validated, question)
	if corrected.IntentType != intent.IntentType {
		b.logger.Info("intent corrected", map[string]interface{}{
			"from":            string(intent.IntentType),
			"to":              string(corrected.IntentType),
			"validatedPeriod": string(validated),
		})
	}

	var (
		s   models.ExecutionStrategy
		err error
	)
	switch corrected.IntentType {
	case models.IntentAverage:
		s = averageStrategy(corrected, validated, question)
	case models.IntentGranularity:
		s = granularityStrategy(validated)
	case models.IntentTemporalSpecific:
		s = temporalStrategy(corrected, validated, question)
	case models.IntentComparison:
		s = comparisonStrategy(question, plan)
	case models.IntentCost:
		s = costStrategy()
	default:
		s, err = b.defaultStrategy(validated, plan)
	}
	if err != nil {
		return models.ExecutionStrategy{}, err
	}

	b.logger.Info("strategy built", map[string]interface{}{
		"intent": string(corrected.IntentType),
		"tool":   string(s.Tool),
		"format": string(s.ExpectedFormat),
	})
	return s, nil
}

var averageWindows = map[models.Period]struct {
	period      models.Period
	granularity models.Granularity
}{
	models.PeriodHourly:  {models.Period7Days, models.GranularityHour},
	models.PeriodDaily:   {models.Period30Days, models.GranularityDay},
	models.PeriodWeekly:  {models.Period84Days, models.GranularityWeek},
	models.PeriodMonthly: {models.Period365Days, models.GranularityMonth},
	models.PeriodYearly:  {models.Period1825Days, models.GranularityYear},
}

func averageStrategy(intent models.QuestionIntent, validated models.Period, question string) models.ExecutionStrategy {
	var (
		period      models.Period
		granularity models.Granularity
	)
	switch {
	case validated == "":
		period = models.Period30Days
		if intent.Temporal == models.TemporalDay {
			period = models.Period7Days
		}
		granularity = granularityOf(intent.Temporal)
	case isAverageWindow(validated):
		period = validated
		granularity = granularityFromQuestion(strings.ToLower(question))
	default:
		w, ok := averageWindows[validated]
		if !ok {
			w.period, w.granularity = models.Period30Days, models.GranularityDay
		}
		period, granularity = w.period, w.granularity
	}

	return models.ExecutionStrategy{
		Tool: models.ToolAggregateMoyenne,
		Params: models.MoyenneParams{
			Period:      period,
			Granularity: granularity,
			Aggregation: string(models.AggregationMean),
			Metric:      "consumption",
		},
		ExpectedFormat:   models.FormatMoyenne,
		ResponseTemplate: "moyenne_response",
	}
}

func isAverageWindow(p models.Period) bool {
	switch p {
	case models.Period7Days, models.Period30Days, models.Period84Days, models.Period365Days, models.Period1825Days:
		return true
	}
	return false
}

func granularityFromQuestion(q string) models.Granularity {
	switch {
	case strings.Contains(q, "horaire"), strings.Contains(q, "heure"):
		return models.GranularityHour
	case strings.Contains(q, "jour"):
		return models.GranularityDay
	case strings.Contains(q, "semaine"):
		return models.GranularityWeek
	case strings.Contains(q, "mois"):
		return models.GranularityMonth
	case strings.Contains(q, "an"):
		return models.GranularityYear
	}
	return models.GranularityDay
}

func granularityOf(t models.Temporal) models.Granularity {
	switch t {
	case models.TemporalHour:
		return models.GranularityHour
	case models.TemporalWeek:
		return models.GranularityWeek
	case models.TemporalMonth:
		return models.GranularityMonth
	case models.TemporalYear:
		return models.GranularityYear
	}
	return models.GranularityDay
}

var granularityWindows = map[models.Period]models.Period{
	models.PeriodHourly:  models.Period7Days,
	models.PeriodDaily:   models.Period30Days,
	models.PeriodWeekly:  models.Period84Days,
	models.PeriodMonthly: models.Period365Days,
	models.PeriodYearly:  models.Period1825Days,
}

func granularityStrategy(validated models.Period) models.ExecutionStrategy {
	if !validated.IsGranularity() {
		validated = models.PeriodDaily
	}
	window := granularityWindows[validated]
	return models.ExecutionStrategy{
		Tool: models.ToolAggregateGranularity,
		Params: models.GranularityParams{
			Granularity:    validated,
			AnalysisPeriod: window,
			Aggregation:    "avg",
		},
		ExpectedFormat:   models.FormatGranularity,
		ResponseTemplate: "granularity_response",
	}
}

func temporalStrategy(intent models.QuestionIntent, validated models.Period, question string) models.ExecutionStrategy {
	q := strings.ToLower(question)

	var period models.Period
	switch {
	case validated == models.PeriodSaturday, validated == models.PeriodSunday:
		period = models.PeriodYesterday
	case validated == models.PeriodWeekend:
		period = models.Period2Days
	case validated != "":
		period = validated
	case strings.Contains(q, "avant-hier"):
		period = models.PeriodDayBeforeYesterday
	case strings.Contains(q, "hier"):
		period = models.PeriodYesterday
	case strings.Contains(q, "mois") || intent.Temporal == models.TemporalMonth:
		switch {
		case strings.Contains(q, "ce mois"):
			period = models.PeriodCurrentMonth
		case strings.Contains(q, "mois dernier"), strings.Contains(q, "dernier mois"):
			period = models.PeriodLastMonth
		default:
			period = models.Period30Days
		}
	case intent.Temporal == models.TemporalHour:
		period = models.PeriodYesterday
	default:
		period = models.Period7Days
	}

	return models.ExecutionStrategy{
		Tool: models.ToolAggregateTemporal,
		Params: models.TemporalParams{
			Period:      period,
			Aggregation: string(models.AggregationSum),
		},
		ExpectedFormat:   models.FormatTemporal,
		ResponseTemplate: "temporal_response",
	}
}

var seasonWords = []struct {
	word   string
	season string
}{
	{"été", "summer"},
	{"hiver", "winter"},
	{"printemps", "spring"},
	{"automne", "autumn"},
}

func comparisonStrategy(question string, plan *models.Plan) models.ExecutionStrategy {
	q := strings.ToLower(question)
	if strings.TrimSpace(q) == "" {
		q = strings.ToLower(planContext(plan))
	}

	switch {
	case containsAny(q, []string{"été", "hiver", "printemps", "automne"}):
		return models.ExecutionStrategy{
			Tool:             models.ToolSeasonalComparison,
			Params:           models.SeasonalComparisonParams{Seasons: seasons(q, plan)},
			ExpectedFormat:   models.FormatComparison,
			ResponseTemplate: "seasonal_comparison_response",
		}
	case containsAny(q, []string{"dernier", "précédent"}):
		return models.ExecutionStrategy{
			Tool: models.ToolTemporalComparison,
			Params: models.TemporalComparisonParams{
				Periods: []models.Period{models.PeriodCurrentMonth, models.PeriodLastMonth},
			},
			ExpectedFormat:   models.FormatComparison,
			ResponseTemplate: "temporal_comparison_response",
		}
	case strings.Contains(q, "weekend") || strings.Contains(q, "semaine"):
		return models.ExecutionStrategy{
			Tool: models.ToolWeekdayComparison,
			Params: models.WeekdayComparisonParams{
				Groups: []string{"weekend", "weekday"},
				Period: models.Period30Days,
			},
			ExpectedFormat:   models.FormatComparison,
			ResponseTemplate: "weekday_comparison_response",
		}
	}
	return models.ExecutionStrategy{
		Tool:             models.ToolZoneComparison,
		Params:           models.ZoneComparisonParams{Period: models.Period7Days},
		ExpectedFormat:   models.FormatZones,
		ResponseTemplate: "zone_response",
	}
}

// seasons prefers the seasons named by the plan, then those in the
// question, then summer against winter.
func seasons(q string, plan *models.Plan) []string {
	if plan != nil {
		for _, step := range plan.Steps {
			if raw, ok := step.Parameters["seasons"].([]any); ok && len(raw) > 0 {
				var out []string
				for _, v := range raw {
					if s, ok := v.(string); ok && s != "" {
						out = append(out, s)
					}
				}
				if len(out) > 0 {
					return out
				}
			}
		}
	}
	var out []string
	for _, sw := range seasonWords {
		if strings.Contains(q, sw.word) {
			out = append(out, sw.season)
		}
	}
	if len(out) == 0 {
		return []string{"summer", "winter"}
	}
	return out
}

// planContext rebuilds a question context from the plan when the question
// itself is unavailable.
func planContext(plan *models.Plan) string {
	if plan == nil {
		return ""
	}
	if plan.Metadata.QuestionContext != "" {
		return plan.Metadata.QuestionContext
	}
	var parts []string
	for _, step := range plan.Steps {
		for _, v := range step.Parameters {
			parts = append(parts, fmt.Sprint(v))
		}
		parts = append(parts, step.Description)
	}
	return strings.Join(parts, " ")
}

func costStrategy() models.ExecutionStrategy {
	return models.ExecutionStrategy{
		Tool: models.ToolCost,
		Params: models.CostParams{
			Period:          models.Period7Days,
			CalculationType: "simple",
		},
		ExpectedFormat:   models.FormatCost,
		ResponseTemplate: "cost_response",
	}
}

func (b *Builder) defaultStrategy(validated models.Period, plan *models.Plan) (models.ExecutionStrategy, error) {
	toolName := string(models.ToolAggregate)
	var raw map[string]any
	if step, ok := plan.FirstStep(); ok {
		if step.ToolName != "" {
			toolName = step.ToolName
		}
		raw = step.Parameters
	}

	tool, err := models.ParseToolName(toolName)
	if err != nil {
		b.logger.Error("plan names an unknown tool", map[string]interface{}{"tool": toolName})
		return models.ExecutionStrategy{}, errors.NewStrategyUnresolvableError(toolName)
	}

	params := normalizeParams(raw)
	if validated != "" {
		params["period"] = string(validated)
	}
	params = b.dropInvalid(tool, params)

	typed, err := decodeParams(tool, params)
	if err != nil {
		b.logger.Warn("planner parameters unusable, using tool defaults", map[string]interface{}{
			"tool":  string(tool),
			"error": err.Error(),
		})
		fallback := map[string]any{}
		if p, ok := params["period"].(string); ok {
			fallback["period"] = p
		}
		if typed, err = decodeParams(tool, fallback); err != nil {
			typed, _ = decodeParams(tool, map[string]any{})
		}
	}

	format := models.FormatConsumption
	if t, ok := b.catalog.Find(tool); ok && t.ExpectedFormat != "" {
		format = t.ExpectedFormat
	}
	return models.ExecutionStrategy{
		Tool:             tool,
		Params:           withDefaults(typed),
		ExpectedFormat:   format,
		ResponseTemplate: "consumption_response",
	}, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
