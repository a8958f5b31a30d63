// internal/workers/energy/build-response/builder.go
package buildresponse

import (
	"strings"

	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"
)

// FallbackAnswer is returned when the query behind a question failed.
const FallbackAnswer = "Désolé, je n'ai pas pu récupérer vos données de consommation pour le moment. Veuillez réessayer dans quelques instants."

// Builder turns an execution result into the answer shown to the user.
type Builder struct {
	decorator Decorator
	source    string
	logger    logger.Logger
}

func NewBuilder(decorator Decorator, source string, log logger.Logger) *Builder {
	if decorator == nil {
		decorator = Plain{}
	}
	return &Builder{decorator: decorator, source: source, logger: log}
}

// Build never fails: a failed execution gives an error response carrying
// the fallback answer and a zero value.
func (b *Builder) Build(question string, result models.ExecutionResult, strategy models.ExecutionStrategy, validation *models.SemanticValidation) models.StandardResponse {
	resp := models.StandardResponse{
		Question:   question,
		Type:       models.ResponseTypeFor(strategy.ExpectedFormat),
		Source:     result.Source,
		AgentChain: []string{"query_executor", "response_builder"},
	}
	if resp.Source == "" {
		resp.Source = b.source
	}

	if !result.Succeeded() {
		b.logger.Warn("execution failed, answering with fallback", map[string]interface{}{
			"tool":  string(strategy.Tool),
			"error": result.Message,
		})
		resp.Status = models.StatusError
		resp.Answer = FallbackAnswer
		resp.Unit = unitOf(strategy.ExpectedFormat, nil)
		resp.Period = string(strategyPeriod(strategy.Params))
		resp.Metadata = map[string]any{}
		if result.Message != "" {
			resp.Errors = []string{result.Message}
		}
		return resp
	}

	raw := result.AsMap()
	data := field(raw, "data")
	if data == nil {
		data = map[string]any{}
	}

	period := strategyPeriod(strategy.Params)
	if p, _ := data["period"].(string); p != "" {
		period = models.Period(p)
	}
	var validated models.Period
	if validation != nil {
		validated = validation.ValidatedPeriod
	}

	resp.Status = models.StatusSuccess
	resp.Value = ExtractValue(raw, b.logger)
	resp.Unit = unitOf(strategy.ExpectedFormat, data)
	resp.Period = string(period)
	if resp.Period == "" {
		resp.Period = "unknown"
	}
	resp.Aggregation, _ = data["aggregation"].(string)
	resp.Metadata = data

	answer := phrase(strategy.ExpectedFormat, answerContext{
		question:  strings.ToLower(question),
		value:     resp.Value,
		data:      data,
		tool:      result.Tool,
		validated: validated,
		period:    period,
	})
	resp.Answer = b.decorator.Decorate(answer, question)
	return resp
}

func strategyPeriod(params models.ToolParams) models.Period {
	switch p := params.(type) {
	case models.MoyenneParams:
		return p.Period
	case models.GranularityParams:
		return p.AnalysisPeriod
	case models.TemporalParams:
		return p.Period
	case models.WeekdayComparisonParams:
		return p.Period
	case models.ZoneComparisonParams:
		return p.Period
	case models.CostParams:
		return p.Period
	case models.AggregateParams:
		return p.Period
	case models.TemporalComparisonParams:
		if len(p.Periods) > 0 {
			return p.Periods[0]
		}
	case models.SeasonalComparisonParams:
		return models.Period365Days
	}
	return ""
}
