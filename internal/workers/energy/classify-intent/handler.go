// internal/workers/energy/classify-intent/handler.go
package classifyintent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"energy-agent/internal/common/camunda"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "energy-classify-intent"

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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Question) == "" {
		return nil, errors.NewQuestionInvalidError("question is required")
	}

	intent := Classify(input.Question, input.ValidatedPeriod)
	_, rule := resolveIntent(strings.ToLower(input.Question))

	h.logger.Info("intent classified", map[string]interface{}{
		"intent":     string(intent.IntentType),
		"temporal":   string(intent.Temporal),
		"rule":       rule,
		"confidence": intent.Confidence,
	})
	return &Output{Intent: intent, Rule: rule}, nil
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
