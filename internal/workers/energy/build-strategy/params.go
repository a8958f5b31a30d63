// internal/workers/energy/build-strategy/params.go
package buildstrategy

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"energy-agent/internal/models"
)

// timeRanges maps the English phrases planners tend to produce.
var timeRanges = map[string]models.Period{
	"this month":   models.PeriodCurrentMonth,
	"last month":   models.PeriodLastMonth,
	"this year":    models.PeriodCurrentYear,
	"last year":    models.PeriodLastYear,
	"this week":    models.PeriodCurrentWeek,
	"last week":    models.PeriodLastWeek,
	"today":        models.PeriodYesterday,
	"yesterday":    models.PeriodYesterday,
	"last 30 days": models.Period30Days,
	"last 7 days":  models.Period7Days,
}

// countedPhrase matches "7 days", "last 14 days", "past 2 weeks",
// "les 10 derniers jours".
var countedPhrase = regexp.MustCompile(`^(?:(?:the\s+)?(?:last|past|previous|les)\s+)?(\d+)\s*(?:derni[eè]re?s\s+)?(days?|weeks?|jours?|semaines?)$`)

// countedDays turns a counted phrase into an Nd window.
func countedDays(key string) (models.Period, bool) {
	m := countedPhrase.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return "", false
	}
	if strings.HasPrefix(m[2], "week") || strings.HasPrefix(m[2], "semaine") {
		n *= 7
	}
	return models.Period(strconv.Itoa(n) + "d"), true
}

// normalizeParams copies planner parameters, folding time_range and
// time_period into period. The period defaults to 7d.
func normalizeParams(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}

	if v, ok := out["time_range"]; ok {
		delete(out, "time_range")
		if s, ok := v.(string); ok {
			out["period"] = string(periodFromPhrase(s))
		}
	}
	if v, ok := out["time_period"]; ok {
		delete(out, "time_period")
		if s, ok := v.(string); ok {
			out["period"] = string(periodFromPhrase(s))
		}
	}
	if s, ok := out["period"].(string); ok {
		out["period"] = string(periodFromPhrase(s))
	}
	if _, ok := out["period"]; !ok {
		out["period"] = string(models.Period7Days)
	}
	return out
}

// periodFromPhrase resolves a phrase through the English table, keeps
// anything that already is a period and otherwise guesses from the words
// it contains.
func periodFromPhrase(s string) models.Period {
	key := strings.ToLower(strings.TrimSpace(s))
	if p, ok := timeRanges[key]; ok {
		return p
	}
	if p, ok := countedDays(key); ok {
		return p
	}
	p := models.Period(key)
	if isDays(p) || p.IsCalendar() || p.IsGranularity() || p.IsNamedDay() {
		return p
	}
	switch p {
	case models.PeriodCurrentWeek, models.PeriodLastWeek, models.PeriodCurrentDay, models.PeriodDayBeforeYesterday:
		return p
	}
	switch {
	case containsAny(key, []string{"hier", "yesterday", "jour", "day"}):
		return models.PeriodYesterday
	case containsAny(key, []string{"semaine", "week"}):
		return models.Period7Days
	case containsAny(key, []string{"mois", "month"}):
		return models.Period30Days
	case containsAny(key, []string{"année", "year"}):
		return models.Period365Days
	}
	return models.Period(s)
}

// dropInvalid removes the top-level parameters the tool schema rejects.
func (b *Builder) dropInvalid(tool models.ToolName, params map[string]any) map[string]any {
	res, err := b.catalog.ValidateParams(tool, params)
	if err != nil || res.Valid {
		return params
	}

	dropped := map[string]bool{}
	for _, e := range res.Errors {
		field := strings.SplitN(e.Field, ".", 2)[0]
		if field == "" || field == "(root)" {
			continue
		}
		if _, ok := params[field]; ok {
			dropped[field] = true
		}
	}
	if len(dropped) == 0 {
		return params
	}

	names := make([]string, 0, len(dropped))
	for k := range dropped {
		delete(params, k)
		names = append(names, k)
	}
	sort.Strings(names)
	b.logger.Warn("dropped invalid planner parameters", map[string]interface{}{
		"tool":   string(tool),
		"fields": strings.Join(names, ","),
		"errors": strings.Join(res.GetErrorMessages(), "; "),
	})
	return params
}

var aggregateFields = map[string]bool{"period": true, "aggregation": true, "metric": true}

// decodeParams fills the tool's parameter struct from a parameter map.
func decodeParams(tool models.ToolName, params map[string]any) (models.ToolParams, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	p, err := models.NewToolParams(tool)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}

	if ap, ok := p.(*models.AggregateParams); ok {
		for k, v := range params {
			if aggregateFields[k] {
				continue
			}
			if ap.Extra == nil {
				ap.Extra = map[string]any{}
			}
			ap.Extra[k] = v
		}
	}
	return deref(p), nil
}

func deref(p models.ToolParams) models.ToolParams {
	switch v := p.(type) {
	case *models.MoyenneParams:
		return *v
	case *models.GranularityParams:
		return *v
	case *models.TemporalParams:
		return *v
	case *models.SeasonalComparisonParams:
		return *v
	case *models.TemporalComparisonParams:
		return *v
	case *models.WeekdayComparisonParams:
		return *v
	case *models.ZoneComparisonParams:
		return *v
	case *models.CostParams:
		return *v
	case *models.AggregateParams:
		return *v
	}
	return p
}

// withDefaults completes the fields a tool cannot run without.
func withDefaults(p models.ToolParams) models.ToolParams {
	switch v := p.(type) {
	case models.MoyenneParams:
		if v.Period == "" {
			v.Period = models.Period30Days
		}
		if v.Granularity == "" {
			v.Granularity = models.GranularityDay
		}
		if v.Aggregation == "" {
			v.Aggregation = string(models.AggregationMean)
		}
		if v.Metric == "" {
			v.Metric = "consumption"
		}
		return v
	case models.GranularityParams:
		if v.Granularity == "" {
			v.Granularity = models.PeriodDaily
		}
		if v.AnalysisPeriod == "" {
			v.AnalysisPeriod = granularityWindows[v.Granularity]
			if v.AnalysisPeriod == "" {
				v.AnalysisPeriod = models.Period7Days
			}
		}
		if v.Aggregation == "" {
			v.Aggregation = "avg"
		}
		return v
	case models.TemporalParams:
		if v.Period == "" {
			v.Period = models.Period7Days
		}
		if v.Aggregation == "" {
			v.Aggregation = string(models.AggregationSum)
		}
		return v
	case models.SeasonalComparisonParams:
		if len(v.Seasons) == 0 {
			v.Seasons = []string{"summer", "winter"}
		}
		return v
	case models.TemporalComparisonParams:
		if len(v.Periods) != 2 {
			v.Periods = []models.Period{models.PeriodCurrentMonth, models.PeriodLastMonth}
		}
		return v
	case models.WeekdayComparisonParams:
		if len(v.Groups) == 0 {
			v.Groups = []string{"weekend", "weekday"}
		}
		if v.Period == "" {
			v.Period = models.Period30Days
		}
		return v
	case models.ZoneComparisonParams:
		if v.Period == "" {
			v.Period = models.Period7Days
		}
		return v
	case models.CostParams:
		if v.Period == "" {
			v.Period = models.Period7Days
		}
		if v.CalculationType == "" {
			v.CalculationType = "simple"
		}
		return v
	case models.AggregateParams:
		if v.Period == "" {
			v.Period = models.Period7Days
		}
		if v.Aggregation == "" {
			v.Aggregation = string(models.AggregationSum)
		}
		if v.Metric == "" {
			v.Metric = "consumption"
		}
		return v
	}
	return p
}

func isDays(p models.Period) bool {
	_, ok := p.Days()
	return ok
}
