// internal/workers/energy/execute-strategy/handler.go
package executestrategy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"energy-agent/internal/common/camunda"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "energy-execute-strategy"

type Handler struct {
	config   *Config
	executor *Executor
	logger   logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		executor: NewExecutor(db, config, log),
		logger:   log,
	}
}

func (h *Handler) Executor() *Executor {
	return h.executor
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Strategy.Params == nil {
		return nil, errors.NewInvalidInputError("execution strategy is required")
	}
	res, err := h.executor.Execute(ctx, input.Strategy)
	if err != nil {
		return nil, err
	}
	return &Output{Result: res}, nil
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
