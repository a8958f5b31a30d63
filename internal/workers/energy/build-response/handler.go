// internal/workers/energy/build-response/handler.go
package buildresponse

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

const TaskType = "energy-build-response"

type Handler struct {
	config  *Config
	builder *Builder
	logger  logger.Logger
}

func NewHandler(config *Config, decorator Decorator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	if decorator == nil {
		decorator = NewDecorator(config)
	}
	return &Handler{
		config:  config,
		builder: NewBuilder(decorator, config.Source, log),
		logger:  log,
	}
}

func (h *Handler) Builder() *Builder {
	return h.builder
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Question) == "" {
		return nil, errors.NewQuestionInvalidError("question is required")
	}
	resp := h.builder.Build(input.Question, input.Result, input.Strategy, input.Validation)
	return &Output{Response: resp}, nil
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
