// internal/workers/energy/validate-period/validator.go
package validateperiod

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/metrics"
	"energy-agent/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

var (
	ErrNoModel       = stderrors.New("no language model configured")
	ErrEmptyResponse = stderrors.New("LLM_RESPONSE_INVALID")
)

// Validator asks the language model for the canonical period of a question.
type Validator struct {
	llm     llms.Model
	prompt  prompts.PromptTemplate
	timeout time.Duration
	logger  logger.Logger
}

func NewValidator(llm llms.Model, timeout time.Duration, log logger.Logger) *Validator {
	return &Validator{
		llm:     llm,
		prompt:  prompts.NewPromptTemplate(promptTemplate, []string{"question"}),
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"component": "semantic_validator"}),
	}
}

// Validate never fails. When the model cannot be reached or answers nothing,
// the outcome is degraded and carries the UNKNOWN/7d fallback.
func (v *Validator) Validate(ctx context.Context, question string) models.ValidationOutcome {
	raw, err := v.ask(ctx, question)
	if err != nil {
		metrics.LLMCalls.WithLabelValues("period_validation", "degraded").Inc()
		v.logger.Warn("semantic validation degraded", map[string]interface{}{"error": err.Error()})
		return Degraded(question, err)
	}

	metrics.LLMCalls.WithLabelValues("period_validation", "success").Inc()
	validation := Interpret(question, raw)
	v.logger.Info("period validated", map[string]interface{}{
		"code":       string(validation.DetectedPeriodCode),
		"period":     string(validation.ValidatedPeriod),
		"confidence": string(validation.Confidence),
	})
	return models.ValidationOutcome{Validation: validation}
}

func (v *Validator) ask(ctx context.Context, question string) (string, error) {
	if v.llm == nil {
		return "", ErrNoModel
	}
	prompt, err := v.prompt.Format(map[string]any{"question": question})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, v.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Degraded is the fallback validation used whenever the model call fails.
func Degraded(question string, cause error) models.ValidationOutcome {
	return models.ValidationOutcome{
		Validation: models.SemanticValidation{
			OriginalQuestion:   question,
			DetectedPeriodCode: models.CodeUnknown,
			ValidatedPeriod:    models.Period7Days,
			Confidence:         models.ConfidenceLow,
			Error:              cause.Error(),
		},
		Degraded: true,
		Err:      errors.NewValidatorDegradedError(cause),
	}
}

// Interpret maps a raw model answer to a validation. Only the first line of
// the answer counts. Unknown codes fall back on markers found in the question.
func Interpret(question, raw string) models.SemanticValidation {
	firstLine := strings.TrimSpace(raw)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	detected := models.PeriodCode(strings.ToUpper(strings.TrimSpace(firstLine)))

	code, known := models.ParsePeriodCode(string(detected))
	q := strings.ToLower(question)

	var period models.Period
	switch {
	case code == models.CodeLast7Days && strings.Contains(q, "horaire"):
		period = models.Period7Days
	case code == models.CodeCurrentYear && strings.Contains(q, "moyenne"):
		period = models.PeriodYearly
	case strings.Contains(q, "horaire") &&
		(strings.Contains(q, "semaine") || strings.Contains(q, "dernière") || strings.Contains(q, "moyenne")):
		period = models.Period7Days
	case known:
		period, _ = code.Period()
	default:
		period = fallbackPeriod(q)
	}

	confidence := models.ConfidenceLow
	if known {
		confidence = models.ConfidenceHigh
	}
	return models.SemanticValidation{
		OriginalQuestion:   question,
		DetectedPeriodCode: detected,
		ValidatedPeriod:    period,
		Confidence:         confidence,
	}
}

func fallbackPeriod(q string) models.Period {
	switch {
	case strings.Contains(q, "jour"):
		return models.PeriodYesterday
	case strings.Contains(q, "semaine"):
		return models.Period7Days
	case strings.Contains(q, "mois"):
		return models.Period30Days
	}
	return models.Period7Days
}
