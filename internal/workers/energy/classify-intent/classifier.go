package classifyintent

import (
	"math"
	"strings"

	"energy-agent/internal/models"
)

// Classify reads the intent of a question. A validated period, when known,
// decides the temporal scope. Classify never fails: every field has a default.
func Classify(question string, validatedPeriod *models.Period) models.QuestionIntent {
	q := strings.ToLower(question)

	intentType, _ := resolveIntent(q)

	temporal := detectTemporal(q)
	if validatedPeriod != nil && *validatedPeriod != "" {
		temporal = models.TemporalFromPeriod(*validatedPeriod)
	}

	return models.QuestionIntent{
		IntentType:  intentType,
		Temporal:    temporal,
		Aggregation: detectAggregation(q, intentType),
		Entities:    detectEntities(q),
		Confidence:  confidence(q, intentType),
	}
}

// Refine re-derives the temporal scope of an intent from a validated period.
func Refine(intent models.QuestionIntent, validatedPeriod models.Period) models.QuestionIntent {
	if validatedPeriod == "" {
		return intent
	}
	return intent.WithTemporal(models.TemporalFromPeriod(validatedPeriod))
}

// resolveIntent returns the intent and the name of the rule that decided it.
func resolveIntent(q string) (models.IntentType, string) {
	for _, r := range Rules() {
		if r.Match(q) {
			return r.Resolve(q), r.Name
		}
	}
	return models.IntentTotal, ""
}

func detectTemporal(q string) models.Temporal {
	for _, g := range temporalGroups {
		if containsAny(q, g.keywords) {
			return g.temporal
		}
	}
	return models.TemporalWeek
}

func detectAggregation(q string, intentType models.IntentType) models.Aggregation {
	if intentType == models.IntentAverage {
		return models.AggregationMean
	}
	for _, g := range aggregationGroups {
		if containsAny(q, g.keywords) {
			return g.aggregation
		}
	}
	return models.AggregationSum
}

func detectEntities(q string) []models.Entity {
	entities := []models.Entity{}
	for _, g := range entityGroups {
		if containsAny(q, g.keywords) {
			entities = append(entities, g.entity)
		}
	}
	return entities
}

// confidence saturates at 1: 0.4 plus 0.3 per keyword of the intent's bag.
func confidence(q string, intentType models.IntentType) float64 {
	matches := 0
	for _, bag := range intentBags {
		if bag.intent != intentType {
			continue
		}
		for _, k := range bag.keywords {
			if strings.Contains(q, k) {
				matches++
			}
		}
	}
	return math.Min(float64(matches)*0.3+0.4, 1.0)
}
