// internal/workers/energy/build-response/phrasing.go
package buildresponse

import (
	"fmt"
	"sort"
	"strings"

	"energy-agent/internal/models"
)

// answerContext is what the phrasing functions read.
type answerContext struct {
	question  string // lower-cased
	value     float64
	data      map[string]any
	tool      models.ToolName
	validated models.Period
	period    models.Period
}

type phraser func(c answerContext) string

var phrasers = map[models.ResponseFormat]phraser{
	models.FormatMoyenne:     moyenneAnswer,
	models.FormatGranularity: granularityAnswer,
	models.FormatTemporal:    temporalAnswer,
	models.FormatComparison:  comparisonAnswer,
	models.FormatZones:       zonesAnswer,
	models.FormatCost:        costAnswer,
	models.FormatConsumption: consumptionAnswer,
}

func phrase(format models.ResponseFormat, c answerContext) string {
	if p, ok := phrasers[format]; ok {
		return p(c)
	}
	return consumptionAnswer(c)
}

const unspecifiedPeriod = "sur la période demandée"

var validatedPhrases = map[models.Period]string{
	models.PeriodCurrentMonth:       "ce mois-ci",
	models.PeriodLastMonth:          "le mois dernier",
	models.PeriodCurrentYear:        "cette année",
	models.PeriodLastYear:           "l'année dernière",
	models.PeriodCurrentWeek:        "cette semaine",
	models.Period30Days:             "ces 30 derniers jours",
	models.Period7Days:              "ces 7 derniers jours",
	models.Period3Days:              "ces 3 derniers jours",
	models.PeriodYesterday:          "hier",
	models.PeriodDayBeforeYesterday: "avant-hier",
	models.PeriodSaturday:           "samedi dernier",
	models.PeriodSunday:             "dimanche dernier",
	models.PeriodWeekend:            "le weekend dernier",
}

// questionPhrases are scanned in order. "avant-hier" precedes "hier" since
// the latter is a substring of the former.
var questionPhrases = []struct {
	markers []string
	phrase  string
}{
	{[]string{"avant-hier", "avant hier"}, "avant-hier"},
	{[]string{"hier"}, "hier"},
	{[]string{"ce mois", "mois-ci"}, "ce mois-ci"},
	{[]string{"mois dernier", "dernier mois"}, "le mois dernier"},
	{[]string{"cette semaine", "semaine-ci"}, "cette semaine"},
	{[]string{"semaine dernière", "dernière semaine"}, "la semaine dernière"},
	{[]string{"semaine passée", "semaine écoulée"}, "la semaine passée"},
	{[]string{"cette année", "année-ci"}, "cette année"},
	{[]string{"année dernière", "dernière année"}, "l'année dernière"},
	{[]string{"par jour"}, "par jour"},
	{[]string{"par semaine"}, "par semaine"},
	{[]string{"par mois"}, "par mois"},
	{[]string{"par année", "par an"}, "par année"},
}

var technicalPhrases = map[models.Period]string{
	models.PeriodYesterday:          "hier",
	models.PeriodDayBeforeYesterday: "avant-hier",
	models.Period7Days:              "cette semaine",
	models.Period30Days:             "ces 30 derniers jours",
	models.Period365Days:            "cette année",
}

func questionPhrase(q string) string {
	for _, qp := range questionPhrases {
		if containsAny(q, qp.markers...) {
			return qp.phrase
		}
	}
	if strings.Contains(q, "semaine") && strings.Contains(q, "dernière") {
		return "la semaine dernière"
	}
	return ""
}

// periodPhrase picks the French period wording: the validated period first,
// then markers in the question, then the executed period code.
func periodPhrase(c answerContext) string {
	if p, ok := validatedPhrases[c.validated]; ok {
		return p
	}
	if p := questionPhrase(c.question); p != "" {
		return p
	}
	if p, ok := technicalPhrases[c.period]; ok {
		return p
	}
	if n, ok := c.period.Days(); ok {
		return fmt.Sprintf("sur les %d derniers jours", n)
	}
	return unspecifiedPeriod
}

func consumptionAnswer(c answerContext) string {
	return fmt.Sprintf("⚡ Vous avez consommé %.1f kWh %s.", c.value, periodPhrase(c))
}

func temporalAnswer(c answerContext) string {
	if c.validated == "" && questionPhrase(c.question) == "" {
		switch {
		case strings.Contains(c.question, "heure"):
			return fmt.Sprintf("⏰ Votre consommation par heure est de %.2f kWh en moyenne.", c.value/24)
		case strings.Contains(c.question, "augmenté"):
			return fmt.Sprintf("📈 Votre consommation actuelle est de %.1f kWh.", c.value)
		case strings.Contains(c.question, "weekend"):
			return fmt.Sprintf("🏖️ Analyse weekend/semaine: %.1f kWh total.", c.value)
		}
	}
	p := periodPhrase(c)
	icon := "⚡"
	if strings.Contains(p, "mois") || strings.Contains(p, "année") {
		icon = "📅"
	}
	return fmt.Sprintf("%s Vous avez consommé %.1f kWh %s.", icon, c.value, p)
}

// averageForms holds the sentence shape of each granularity.
var averageForms = map[models.Granularity]struct {
	icon, label, valueFormat string
}{
	models.GranularityYear:  {"📊", "par an", "%.0f"},
	models.GranularityMonth: {"📈", "par mois", "%.1f"},
	models.GranularityWeek:  {"📊", "par semaine", "%.1f"},
	models.GranularityDay:   {"📅", "par jour", "%.1f"},
	models.GranularityHour:  {"⏰", "par heure", "%.2f"},
}

func averageSentence(g models.Granularity, value float64, context string) string {
	f := averageForms[g]
	return fmt.Sprintf("%s Votre consommation moyenne %s%s est de "+f.valueFormat+" %s.", f.icon, f.label, context, value, g.Unit())
}

var questionGranularities = []struct {
	markers     []string
	granularity models.Granularity
}{
	{[]string{"par an", "par année", "annuelle"}, models.GranularityYear},
	{[]string{"par mois", "mensuelle"}, models.GranularityMonth},
	{[]string{"par semaine", "hebdomadaire"}, models.GranularityWeek},
	{[]string{"par jour", "quotidienne", "journalière"}, models.GranularityDay},
	{[]string{"par heure", "horaire"}, models.GranularityHour},
}

var granularityNames = map[string]models.Granularity{
	"heure": models.GranularityHour, "hour": models.GranularityHour, "hourly": models.GranularityHour,
	"jour": models.GranularityDay, "day": models.GranularityDay, "daily": models.GranularityDay,
	"semaine": models.GranularityWeek, "week": models.GranularityWeek, "weekly": models.GranularityWeek,
	"mois": models.GranularityMonth, "month": models.GranularityMonth, "monthly": models.GranularityMonth,
	"année": models.GranularityYear, "year": models.GranularityYear, "yearly": models.GranularityYear,
}

func dataGranularity(data map[string]any) (models.Granularity, bool) {
	s, _ := data["granularity"].(string)
	g, ok := granularityNames[s]
	return g, ok
}

func moyenneAnswer(c answerContext) string {
	context := ""
	switch {
	case strings.Contains(c.question, "mois dernier"):
		context = " le mois dernier"
	case strings.Contains(c.question, "semaine dernière"):
		context = " la semaine dernière"
	case strings.Contains(c.question, "année dernière"):
		context = " l'année dernière"
	}
	for _, qg := range questionGranularities {
		if containsAny(c.question, qg.markers...) {
			return averageSentence(qg.granularity, c.value, context)
		}
	}
	if g, ok := dataGranularity(c.data); ok {
		return averageSentence(g, c.value, "")
	}
	return fmt.Sprintf("📊 Votre consommation moyenne est de %.1f %s.", c.value, unitOf(models.FormatMoyenne, c.data))
}

func granularityAnswer(c answerContext) string {
	if g, ok := granularityNames[string(c.validated)]; ok {
		return averageSentence(g, c.value, "")
	}
	if g, ok := dataGranularity(c.data); ok {
		return averageSentence(g, c.value, "")
	}
	return fmt.Sprintf("📊 Votre consommation moyenne est de %.2f kWh par unité de temps.", c.value)
}

func costAnswer(c answerContext) string {
	consumption, _ := number(c.data["consumption_kwh"])
	if advice, _ := c.data["advice"].(string); advice != "" {
		return fmt.Sprintf("💡 %s. Coût actuel: %.2f€ pour %.1f kWh.", advice, c.value, consumption)
	}
	return fmt.Sprintf("💰 Le coût est de %.2f€ pour une consommation de %.1f kWh.", c.value, consumption)
}

var zoneNames = map[string]string{
	"cuisine":   "la cuisine",
	"buanderie": "la buanderie",
	"chauffage": "le chauffage",
}

func zonesAnswer(c answerContext) string {
	zones, _ := c.data["zones"].(map[string]any)
	names := make([]string, 0, len(zones))
	for name := range zones {
		if _, metered := zoneNames[name]; metered {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "Aucune donnée de zones disponible."
	}
	sort.Strings(names)

	top, topValue := "", -1.0
	for _, name := range names {
		if v, ok := numeric(zones[name]); ok && v > topValue {
			top, topValue = name, v
		}
	}
	if top == "" {
		return "Aucune donnée de zones disponible."
	}
	return fmt.Sprintf("🏠 %s consomme le plus avec %.1f kWh. Total: %.1f kWh.", zoneNames[top], topValue, c.value)
}

var seasonNames = []struct{ key, label string }{
	{"spring", "printemps"},
	{"summer", "été"},
	{"autumn", "automne"},
	{"winter", "hiver"},
}

func comparisonAnswer(c answerContext) string {
	switch c.tool {
	case models.ToolSeasonalComparison:
		if s := seasonalDetail(c.data); s != "" {
			return s
		}
	case models.ToolTemporalComparison:
		if s := temporalDetail(c.data); s != "" {
			return s
		}
	case models.ToolWeekdayComparison:
		if s := weekdayDetail(c.data); s != "" {
			return s
		}
	}

	q := c.question
	switch {
	case strings.Contains(q, "été") && strings.Contains(q, "hiver"):
		return fmt.Sprintf("🌞❄️ Comparaison saisonnière: les données montrent une consommation de %.1f kWh.", c.value)
	case containsAny(q, "dernier", "précédent"):
		return fmt.Sprintf("📈 Comparaison temporelle: votre consommation actuelle est de %.1f kWh.", c.value)
	case strings.Contains(q, "weekend") && strings.Contains(q, "semaine"):
		return fmt.Sprintf("🏖️ Comparaison weekend/semaine: %.1f kWh total observé.", c.value)
	case containsAny(q, "année", "annuel"):
		return fmt.Sprintf("📅 Consommation annuelle: %.1f kWh sur la période analysée.", c.value)
	}
	return fmt.Sprintf("📊 Analyse comparative: %.1f kWh observé pour la comparaison demandée.", c.value)
}

func seasonalDetail(data map[string]any) string {
	seasons, _ := data["seasons"].(map[string]any)
	var parts []string
	top, topValue := "", -1.0
	for _, s := range seasonNames {
		v, ok := numeric(seasons[s.key])
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.1f kWh", s.label, v))
		if v > topValue {
			top, topValue = s.label, v
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("🌞❄️ Comparaison saisonnière: %s. La consommation la plus forte est en %s.", strings.Join(parts, ", "), top)
}

func temporalDetail(data map[string]any) string {
	current, ok := numeric(data["current_period"])
	if !ok {
		return ""
	}
	previous, _ := numeric(data["previous_period"])
	change, _ := numeric(data["change_percent"])

	trend := "stable"
	switch data["comparison"] {
	case "higher":
		trend = fmt.Sprintf("en hausse de %.1f%%", change)
	case "lower":
		trend = fmt.Sprintf("en baisse de %.1f%%", -change)
	}
	return fmt.Sprintf("📈 Comparaison temporelle: %.1f kWh sur la période actuelle contre %.1f kWh sur la période précédente, %s.", current, previous, trend)
}

func weekdayDetail(data map[string]any) string {
	groups, _ := data["groups"].(map[string]any)
	weekend, okEnd := numeric(groups["weekend"])
	weekday, okDay := numeric(groups["weekday"])
	if !okEnd || !okDay {
		return ""
	}
	return fmt.Sprintf("🏖️ Comparaison weekend/semaine: %.1f kWh par jour le weekend contre %.1f kWh par jour en semaine.", weekend, weekday)
}

// unitOf returns the unit reported alongside the value.
func unitOf(format models.ResponseFormat, data map[string]any) string {
	switch models.ResponseTypeFor(format) {
	case models.TypeCost:
		return "€"
	case models.TypeMoyenne:
		if u, _ := data["unit"].(string); u != "" {
			return u
		}
		if g, ok := dataGranularity(data); ok {
			return g.Unit()
		}
		return models.GranularityDay.Unit()
	}
	return "kWh"
}
