// internal/workers/energy/generate-plan/handler.go
package generateplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"energy-agent/internal/common/camunda"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/tmc/langchaingo/llms"
)

const TaskType = "energy-generate-plan"

type Handler struct {
	config  *Config
	planner *Planner
	logger  logger.Logger
}

func NewHandler(config *Config, llm llms.Model, catalog *registry.ToolCatalog, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		planner: NewPlanner(llm, catalog, config.Timeout, log),
		logger:  log,
	}
}

func (h *Handler) Planner() *Planner {
	return h.planner
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Question) == "" {
		return nil, errors.NewQuestionInvalidError("question is required")
	}
	plan, err := h.planner.Plan(ctx, input.Question)
	if err != nil {
		return nil, err
	}
	return &Output{Plan: plan}, nil
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
