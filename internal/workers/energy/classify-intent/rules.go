// internal/workers/energy/classify-intent/rules.go
package classifyintent

import (
	"strings"

	"energy-agent/internal/models"
)

// Rule is one step of the intent decision list. Rules see the lowercased
// question and are evaluated in the order returned by Rules.
type Rule struct {
	Name    string
	Match   func(q string) bool
	Resolve func(q string) models.IntentType
}

var simpleQuestionPatterns = []string{
	"quelle est ma consommation",
	"consommation par",
	"ma consommation du",
	"combien ai-je consommé",
}

var relativePeriodMarkers = []string{
	"semaine dernière", "dernière semaine", "avant-hier", "avant hier",
}

// ComparisonTriggers are the phrases that make a question an explicit comparison.
var ComparisonTriggers = []string{
	"est-elle", "plus élevée", "plus faible", "différente", "compare", "versus",
}

type keywordBag struct {
	intent   models.IntentType
	keywords []string
}

// intentBags is ordered: the first bag with a hit wins.
var intentBags = []keywordBag{
	{models.IntentAverage, []string{"moyenne", "average", "moyen", "en moyenne"}},
	{models.IntentTotal, []string{
		"total", "somme", "consommé", "consommation",
		"combien", "quelle", "quel est",
		"par semaine", "par mois", "par jour",
		"weekend", "mois dernier", "le mois dernier",
		"ces 7 derniers jours", "ces 30 derniers jours",
		"cette semaine", "ce mois-ci", "samedi", "dimanche",
	}},
	{models.IntentComparison, []string{
		"été vs hiver", "plus élevée que", "plus faible que",
		"par rapport à", "compare", "versus", "vs",
		"différence entre", "comparaison",
		"a augmenté", "a diminué", "évolution", "tendance",
	}},
	{models.IntentTemporalSpecific, []string{
		"hier", "yesterday", "avant-hier", "avant hier", "semaine dernière",
		"dernière semaine", "mois-ci", "ce mois", "heure", "par heure", "par année", "annuel",
	}},
	{models.IntentCost, []string{"coût", "euro", "€", "prix", "économiser", "argent"}},
	{models.IntentForecast, []string{"prévision", "prévoir", "futur", "demain"}},
}

// Rules returns the intent decision list in priority order.
func Rules() []Rule {
	return []Rule{
		{
			Name:  "simple_question",
			Match: func(q string) bool { return containsAny(q, simpleQuestionPatterns) },
			Resolve: func(q string) models.IntentType {
				switch {
				case strings.Contains(q, "moyenne"):
					return models.IntentAverage
				case containsAny(q, []string{"hier", "par heure", "par année"}):
					return models.IntentTemporalSpecific
				}
				return models.IntentTotal
			},
		},
		{
			Name:    "relative_period",
			Match:   func(q string) bool { return containsAny(q, relativePeriodMarkers) },
			Resolve: constant(models.IntentTemporalSpecific),
		},
		{
			Name:    "explicit_comparison",
			Match:   func(q string) bool { return containsAny(q, ComparisonTriggers) },
			Resolve: constant(models.IntentComparison),
		},
		{
			Name:  "keyword_bags",
			Match: func(string) bool { return true },
			Resolve: func(q string) models.IntentType {
				for _, bag := range intentBags {
					if containsAny(q, bag.keywords) {
						return bag.intent
					}
				}
				return models.IntentTotal
			},
		},
	}
}

func constant(t models.IntentType) func(string) models.IntentType {
	return func(string) models.IntentType { return t }
}

type temporalGroup struct {
	temporal models.Temporal
	keywords []string
}

var temporalGroups = []temporalGroup{
	{models.TemporalDay, []string{"hier", "yesterday"}},
	{models.TemporalDay, []string{"jour", "day", "quotidien", "journalier"}},
	{models.TemporalWeek, []string{"semaine", "week", "hebdomadaire"}},
	{models.TemporalMonth, []string{"mois", "month", "mensuel"}},
	{models.TemporalYear, []string{"année", "year", "annuel"}},
	{models.TemporalHour, []string{"heure", "horaire"}},
}

type aggregationGroup struct {
	aggregation models.Aggregation
	keywords    []string
}

var aggregationGroups = []aggregationGroup{
	{models.AggregationMean, []string{"moyenne", "average", "moyen"}},
	{models.AggregationSum, []string{"total", "somme", "consommé"}},
	{models.AggregationMax, []string{"maximum", "max", "pic", "pointe"}},
	{models.AggregationMin, []string{"minimum", "min", "plus faible"}},
}

var entityGroups = []struct {
	entity   models.Entity
	keywords []string
}{
	{models.EntityConsumption, []string{"consommation", "énergie", "électricité"}},
	{models.EntityPrice, []string{"prix", "coût", "euro", "€"}},
	{models.EntityZone, []string{"zone", "compteur", "cuisine", "chauffage"}},
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
