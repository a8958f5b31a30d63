// internal/workers/energy/execute-strategy/executor.go
package executestrategy

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/metrics"
	"energy-agent/internal/models"
	"energy-agent/internal/workers/energy/execute-strategy/queries"
)

// Executor runs execution strategies against the analytical store.
type Executor struct {
	db      *sql.DB
	env     queries.Env
	source  string
	timeout time.Duration
	logger  logger.Logger
}

func NewExecutor(db *sql.DB, config *Config, log logger.Logger) *Executor {
	return &Executor{
		db:      db,
		env:     queries.Env{Tariff: config.Tariff},
		source:  config.Source,
		timeout: config.QueryTimeout,
		logger:  log.With(map[string]interface{}{"component": "executor"}),
	}
}

// Execute runs the strategy's tool. Backend failures come back as an error
// result; the returned error is reserved for a tool with no registered query.
func (e *Executor) Execute(ctx context.Context, s models.ExecutionStrategy) (models.ExecutionResult, error) {
	fn, err := queries.Lookup(s.Tool)
	if err != nil {
		e.logger.Error("no query registered for tool", map[string]interface{}{"tool": string(s.Tool)})
		return models.ExecutionResult{}, errors.NewUnknownToolError(string(s.Tool))
	}
	if e.db == nil {
		return e.fail(s.Tool, errors.NewDatabaseConnectionFailedError(stderrors.New("no database configured")), 0), nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := fn(ctx, e.db, e.env, s.Params)
	elapsed := time.Since(start)
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errors.NewQueryTimeoutError(string(s.Tool))
		}
		return e.fail(s.Tool, err, elapsed), nil
	}

	metrics.QueryDuration.WithLabelValues(string(s.Tool), "success").Observe(elapsed.Seconds())
	e.logger.Info("query executed", map[string]interface{}{
		"tool":        string(s.Tool),
		"duration_ms": elapsed.Milliseconds(),
	})
	return models.ExecutionResult{
		Status:  models.ExecutionSuccess,
		Tool:    s.Tool,
		Source:  e.source,
		Payload: payload,
	}, nil
}

func (e *Executor) fail(tool models.ToolName, err error, elapsed time.Duration) models.ExecutionResult {
	metrics.QueryDuration.WithLabelValues(string(tool), "error").Observe(elapsed.Seconds())
	e.logger.Error("query failed", map[string]interface{}{
		"tool":  string(tool),
		"error": err.Error(),
	})
	return models.Failed(tool, err.Error())
}
