// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is implemented by every stage handler that can run as a job.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Registration binds a job type to its handler.
type Registration struct {
	TaskType string
	Handler  JobHandler
}

// StartWorkers opens one job worker per enabled registration.
func StartWorkers(client zbc.Client, cfg *config.Config, regs []Registration, log *zap.Logger) []worker.JobWorker {
	var opened []worker.JobWorker
	for _, reg := range regs {
		wcfg := config.GetWorkerConfig(cfg, reg.TaskType)
		if !wcfg.Enabled {
			log.Info("worker disabled", zap.String("taskType", reg.TaskType))
			continue
		}

		handler := instrument(reg.TaskType, reg.Handler)
		w := client.NewJobWorker().
			JobType(reg.TaskType).
			Handler(handler).
			MaxJobsActive(wcfg.MaxJobsActive).
			Timeout(config.GetDuration(wcfg.Timeout)).
			Open()
		opened = append(opened, w)

		log.Info("worker started",
			zap.String("taskType", reg.TaskType),
			zap.Int("maxJobsActive", wcfg.MaxJobsActive),
			zap.Int("timeout_ms", wcfg.Timeout),
		)
	}
	return opened
}

func instrument(taskType string, h JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		h.Handle(client, job)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}
}

// StopWorkers closes the job workers and waits for in-flight jobs.
func StopWorkers(workers []worker.JobWorker) {
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
}

// CompleteJob completes the job with output as variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, output interface{}) error {
	err := ExecuteWithRetry(ctx, &RetryConfig{MaxRetries: 2, BaseDelay: 200 * time.Millisecond, MaxDelay: time.Second}, "complete-job",
		func(ctx context.Context) error {
			cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
			if err != nil {
				return err
			}
			_, err = cmd.Send(ctx)
			return err
		})
	if err == nil {
		metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	}
	return err
}

// FailJob records the failure and hands the job to the BPMN error handler.
func FailJob(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, err error, log errors.Logger) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
	errors.NewErrorHandler(log).HandleJobError(ctx, client, job, stdErr)
}
