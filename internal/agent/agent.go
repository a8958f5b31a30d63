// Package agent wires the question pipeline and its stage handlers from
// configuration. Every surface (HTTP, NATS, Zeebe, CLI) shares one Agent.
package agent

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"energy-agent/internal/common/camunda"
	"energy-agent/internal/common/config"
	"energy-agent/internal/common/database"
	"energy-agent/internal/common/genai"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/observability"
	buildresponse "energy-agent/internal/workers/energy/build-response"
	buildstrategy "energy-agent/internal/workers/energy/build-strategy"
	classifyintent "energy-agent/internal/workers/energy/classify-intent"
	executestrategy "energy-agent/internal/workers/energy/execute-strategy"
	generateplan "energy-agent/internal/workers/energy/generate-plan"
	processquestion "energy-agent/internal/workers/energy/process-question"
	suggestquestions "energy-agent/internal/workers/energy/suggest-questions"
	validateperiod "energy-agent/internal/workers/energy/validate-period"
	validatequestion "energy-agent/internal/workers/energy/validate-question"
	"energy-agent/pkg/registry"

	"github.com/tmc/langchaingo/llms"
)

// Options replaces infrastructure that New would otherwise open from the
// configuration. Zero values mean "open from config".
type Options struct {
	DB            *sql.DB
	LLM           llms.Model
	Search        suggestquestions.Searcher
	Catalog       *registry.ToolCatalog
	Decorator     buildresponse.Decorator
	Observability *observability.Observability
}

// Agent holds the pipeline, the stage handlers and the clients they use.
type Agent struct {
	Config        *config.Config
	Catalog       *registry.ToolCatalog
	Pipeline      *processquestion.Pipeline
	Registrations []camunda.Registration
	Observability *observability.Observability

	postgres      *database.PostgresClient
	redis         *database.RedisClient
	elasticsearch *database.ElasticsearchClient
	logger        logger.Logger
	ownsObs       bool
	checks        map[string]func(context.Context) error
}

// New builds the agent. Connections are opened lazily by database/sql and
// the Redis and Elasticsearch clients; use Connect to wait for them.
func New(cfg *config.Config, log logger.Logger, opts Options) (*Agent, error) {
	a := &Agent{Config: cfg, Catalog: opts.Catalog, logger: log}
	if a.Catalog == nil {
		a.Catalog = registry.Default()
	}

	db := opts.DB
	if db == nil {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		a.postgres = pg
		db = pg.DB
	} else {
		a.postgres = database.NewPostgresFromDB(db, config.GetDuration(cfg.Database.Postgres.QueryTimeout))
	}

	model := opts.LLM
	if model == nil {
		var cache *genai.Cache
		if cfg.Database.Redis.Enabled && cfg.APIs.Gemini.CacheTTL > 0 {
			rc, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return nil, err
			}
			a.redis = rc
			cache = genai.NewCache(rc.GetClient(), time.Duration(cfg.APIs.Gemini.CacheTTL)*time.Second, log)
		}
		model = genai.NewClient(cfg.APIs.Gemini, cache, log)
	}

	search := opts.Search
	if search == nil && cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch client: %w", err)
		}
		a.elasticsearch = es
		search = es
	}

	a.Observability = opts.Observability
	if a.Observability == nil {
		obs, err := observability.New(cfg.Tracing.ServiceName)
		if err != nil {
			log.Warn("otel meter unavailable", map[string]interface{}{"error": err.Error()})
		}
		if cfg.Tracing.Enabled {
			if err := obs.EnableTracing(cfg.Tracing.JaegerEndpoint, cfg.Tracing.ServiceName); err != nil {
				log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
			}
		}
		a.Observability = obs
		a.ownsObs = true
	}

	gate := validatequestion.NewHandler(validatequestion.LoadConfig(cfg), log)
	classifier := classifyintent.NewHandler(classifyintent.LoadConfig(cfg), log)
	periods := validateperiod.NewHandler(validateperiod.LoadConfig(cfg), model, log)
	planner := generateplan.NewHandler(generateplan.LoadConfig(cfg), model, a.Catalog, log)
	strategies := buildstrategy.NewHandler(buildstrategy.LoadConfig(cfg), a.Catalog, log)
	executor := executestrategy.NewHandler(executestrategy.LoadConfig(cfg), db, log)
	responseCfg := buildresponse.LoadConfig(cfg)
	responses := buildresponse.NewHandler(responseCfg, opts.Decorator, log)
	suggestions := suggestquestions.NewHandler(suggestquestions.LoadConfig(cfg), search, log)

	a.Pipeline = processquestion.NewPipeline(processquestion.Deps{
		Gate:          gate,
		Validator:     periods.Validator(),
		Planner:       planner.Planner(),
		Strategies:    strategies.Builder(),
		Executor:      executor.Executor(),
		Responses:     responses.Builder(),
		Suggester:     suggestions.Suggester(),
		Observability: a.Observability,
		Logger:        log,
	})
	process := processquestion.NewHandler(processquestion.LoadConfig(cfg), a.Pipeline, log)

	a.Registrations = []camunda.Registration{
		{TaskType: validatequestion.TaskType, Handler: gate},
		{TaskType: classifyintent.TaskType, Handler: classifier},
		{TaskType: validateperiod.TaskType, Handler: periods},
		{TaskType: generateplan.TaskType, Handler: planner},
		{TaskType: buildstrategy.TaskType, Handler: strategies},
		{TaskType: executestrategy.TaskType, Handler: executor},
		{TaskType: buildresponse.TaskType, Handler: responses},
		{TaskType: suggestquestions.TaskType, Handler: suggestions},
		{TaskType: processquestion.TaskType, Handler: process},
	}
	return a, nil
}

// Connect waits for the analytical store and the optional backends, with
// exponential backoff.
func (a *Agent) Connect(ctx context.Context, attempts int, initialDelay time.Duration) error {
	if err := retryWithBackoff(ctx, a.postgres.Ping, attempts, initialDelay, a.logger, "PostgreSQL connection"); err != nil {
		return err
	}
	if a.redis != nil {
		if err := retryWithBackoff(ctx, a.redis.Ping, attempts, initialDelay, a.logger, "Redis connection"); err != nil {
			return err
		}
	}
	if a.elasticsearch != nil {
		// Suggestions fall back to built-in examples, so a missing index is not fatal.
		if err := retryWithBackoff(ctx, a.elasticsearch.Ping, attempts, initialDelay, a.logger, "Elasticsearch connection"); err != nil {
			a.logger.Warn("elasticsearch unavailable, suggestions use built-in examples", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// AddCheck registers an extra readiness probe, such as the Zeebe topology.
func (a *Agent) AddCheck(name string, check func(context.Context) error) {
	if a.checks == nil {
		a.checks = map[string]func(context.Context) error{}
	}
	a.checks[name] = check
}

// Ready pings every configured backend once.
func (a *Agent) Ready(ctx context.Context) map[string]error {
	checks := map[string]error{"postgres": a.postgres.Ping(ctx)}
	if a.redis != nil {
		checks["redis"] = a.redis.Ping(ctx)
	}
	if a.elasticsearch != nil {
		checks["elasticsearch"] = a.elasticsearch.Ping(ctx)
	}
	for name, check := range a.checks {
		checks[name] = check(ctx)
	}
	return checks
}

// Postgres returns the analytical store client.
func (a *Agent) Postgres() *database.PostgresClient {
	return a.postgres
}

// Elasticsearch returns nil when the suggestion index is disabled.
func (a *Agent) Elasticsearch() *database.ElasticsearchClient {
	return a.elasticsearch
}

func (a *Agent) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		_ = a.postgres.Close()
	}
	if a.ownsObs {
		a.Observability.Shutdown()
	}
}

func retryWithBackoff(ctx context.Context, operation func(context.Context) error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	delay := initialDelay
	for i := 0; i < maxRetries; i++ {
		if err = operation(ctx); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}
		log.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
