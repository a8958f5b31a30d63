package classifyintent

import (
	"context"
	"strings"
	"testing"

	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func period(p models.Period) *models.Period { return &p }

func TestRulesOrder(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"simple_question", "relative_period", "explicit_comparison", "keyword_bags"}, names)
}

func TestClassify_IntentType(t *testing.T) {
	tests := []struct {
		name     string
		question string
		intent   models.IntentType
		rule     string
	}{
		{"simple average", "Quelle est ma consommation moyenne par jour ?", models.IntentAverage, "simple_question"},
		{"simple average beats comparison noise", "Quelle est ma consommation moyenne, est-elle plus élevée que l'an dernier ?", models.IntentAverage, "simple_question"},
		{"simple yesterday", "Quelle est ma consommation hier ?", models.IntentTemporalSpecific, "simple_question"},
		{"simple total", "Combien ai-je consommé cette semaine ?", models.IntentTotal, "simple_question"},
		{"relative period", "La semaine dernière, combien ?", models.IntentTemporalSpecific, "relative_period"},
		{"explicit comparison", "Ma consommation en hiver est-elle plus élevée qu'en été ?", models.IntentComparison, "explicit_comparison"},
		{"comparison bag", "Montre la tendance", models.IntentComparison, "keyword_bags"},
		{"forecast bag", "Prévision pour demain", models.IntentForecast, "keyword_bags"},
		{"default", "Bonsoir !", models.IntentTotal, "keyword_bags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.question, nil)
			assert.Equal(t, tt.intent, got.IntentType)

			_, rule := resolveIntent(strings.ToLower(tt.question))
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestClassify_Fields(t *testing.T) {
	got := Classify("Quelle est ma consommation moyenne par jour ?", nil)
	assert.Equal(t, models.TemporalDay, got.Temporal)
	assert.Equal(t, models.AggregationMean, got.Aggregation)
	assert.Equal(t, []models.Entity{models.EntityConsumption}, got.Entities)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)

	got = Classify("Quelle est ma consommation hier ?", nil)
	assert.Equal(t, models.TemporalDay, got.Temporal)
	assert.Equal(t, models.AggregationSum, got.Aggregation)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)

	got = Classify("Bonsoir !", nil)
	assert.Equal(t, models.TemporalWeek, got.Temporal)
	assert.Equal(t, models.AggregationSum, got.Aggregation)
	assert.Empty(t, got.Entities)
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)
}

func TestClassify_ValidatedPeriodDecidesTemporal(t *testing.T) {
	got := Classify("Combien ai-je consommé par jour ?", period(models.PeriodCurrentMonth))
	assert.Equal(t, models.TemporalMonth, got.Temporal)

	got = Classify("Combien ai-je consommé par jour ?", period(models.PeriodWeekend))
	assert.Equal(t, models.TemporalWeek, got.Temporal)
}

func TestClassify_AggregationAndEntities(t *testing.T) {
	got := Classify("Quel a été mon pic de puissance ?", nil)
	assert.Equal(t, models.AggregationMax, got.Aggregation)

	got = Classify("Quelle est la consommation de la cuisine en euro ?", nil)
	assert.Equal(t, []models.Entity{models.EntityConsumption, models.EntityPrice, models.EntityZone}, got.Entities)
}

func TestRefine(t *testing.T) {
	intent := Classify("Combien ai-je consommé ?", nil)
	require.Equal(t, models.TemporalWeek, intent.Temporal)

	refined := Refine(intent, models.PeriodYesterday)
	assert.Equal(t, models.TemporalDay, refined.Temporal)
	assert.Equal(t, models.TemporalWeek, intent.Temporal)

	assert.Equal(t, intent, Refine(intent, ""))
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(nil), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Question: "Quelle est ma consommation moyenne par jour ?"})
	require.NoError(t, err)
	assert.Equal(t, models.IntentAverage, out.Intent.IntentType)
	assert.Equal(t, "simple_question", out.Rule)

	_, err = h.Execute(context.Background(), &Input{Question: "  "})
	assert.Error(t, err)
}
