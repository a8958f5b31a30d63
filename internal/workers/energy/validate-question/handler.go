// internal/workers/energy/validate-question/handler.go
package validatequestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"energy-agent/internal/common/camunda"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "energy-validate-question"

// Handler is the question gate: it decides whether a question reaches the
// classifier, goes to the error branch or is redirected.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

// Check classifies the question scope. Keyword groups are tested in
// priority order: off-topic, cost, then energy.
func (h *Handler) Check(question string) models.ScopeCheck {
	trimmed := strings.TrimSpace(question)
	if utf8.RuneCountInString(trimmed) < h.config.MinLength {
		return models.ScopeCheck{
			Valid:     false,
			ScopeType: models.ScopeInvalid,
			Reason:    "Question trop courte",
			Message:   "❌ Votre question est trop courte. Pouvez-vous la reformuler ?",
		}
	}

	q := strings.ToLower(trimmed)
	switch {
	case containsAnyWord(q, nonEnergyKeywords):
		return outOfScope(models.ScopeNonEnergy)
	case containsAny(q, costKeywords):
		if h.config.CostInScope {
			return models.ScopeCheck{Valid: true, ScopeType: models.ScopeCost, Reason: "Question de coût acceptée"}
		}
		return outOfScope(models.ScopeCost)
	case containsAny(q, energyKeywords):
		return models.ScopeCheck{Valid: true, ScopeType: models.ScopeEnergy, Reason: "Question de consommation valide"}
	default:
		return outOfScope(models.ScopeUnknown)
	}
}

func outOfScope(scope models.ScopeType) models.ScopeCheck {
	r := redirects[scope]
	return models.ScopeCheck{
		Valid:      false,
		ScopeType:  scope,
		Reason:     r.reason,
		Message:    r.message,
		Suggestion: r.suggestion,
	}
}

// Answer renders the redirect text shown for a rejected question.
func Answer(s models.ScopeCheck) string {
	if s.Suggestion == "" {
		return s.Message
	}
	return s.Message + "\n\n💡 **Suggestion :** " + s.Suggestion
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}
	scope := h.Check(input.Question)
	h.logger.Info("question checked", map[string]interface{}{
		"scopeType": string(scope.ScopeType),
		"valid":     scope.Valid,
	})
	return &Output{Scope: scope, Valid: scope.Valid}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		camunda.FailJob(ctx, client, job, TaskType, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)), h.logger)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		camunda.FailJob(ctx, client, job, TaskType, err, h.logger)
		return
	}
	if err := camunda.CompleteJob(ctx, client, job, TaskType, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
	}
}
