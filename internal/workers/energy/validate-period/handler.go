// internal/workers/energy/validate-period/handler.go
package validateperiod

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"energy-agent/internal/common/camunda"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/tmc/langchaingo/llms"
)

const TaskType = "energy-validate-period"

type Handler struct {
	config    *Config
	validator *Validator
	logger    logger.Logger
}

func NewHandler(config *Config, llm llms.Model, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		validator: NewValidator(llm, config.Timeout, log),
		logger:    log,
	}
}

// Validator exposes the validator so the pipeline shares it with the job worker.
func (h *Handler) Validator() *Validator {
	return h.validator
}

// Execute completes even when the model is unavailable; the output then
// reports the degraded fallback.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}
	outcome := h.validator.Validate(ctx, input.Question)
	return &Output{Validation: outcome.Validation, Degraded: outcome.Degraded}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout+time.Second)
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
