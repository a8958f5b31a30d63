// internal/workers/energy/process-question/pipeline.go
package processquestion

import (
	"context"
	"time"

	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/metrics"
	"energy-agent/internal/common/observability"
	"energy-agent/internal/models"
	buildstrategy "energy-agent/internal/workers/energy/build-strategy"
	classifyintent "energy-agent/internal/workers/energy/classify-intent"
	validatequestion "energy-agent/internal/workers/energy/validate-question"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Stage names, used for spans, metrics and the agent chain.
const (
	StageValidate         = "validate-question"
	StageClassifyIntent   = "classify-intent"
	StageSemanticValidate = "validate-period"
	StagePlan             = "generate-plan"
	StageBuildStrategy    = "build-strategy"
	StageExecute          = "execute-strategy"
	StageBuildResponse    = "build-response"
	StageOutOfScope       = "out-of-scope"
)

// ErrorAnswer is shown when a question is rejected as malformed.
const ErrorAnswer = "❌ Désolé, je ne peux pas traiter cette question pour le moment."

type Gate interface {
	Check(question string) models.ScopeCheck
}

type IntentClassifier interface {
	Classify(question string, validated *models.Period) models.QuestionIntent
}

// ClassifierFunc adapts a classification function to IntentClassifier.
type ClassifierFunc func(question string, validated *models.Period) models.QuestionIntent

func (f ClassifierFunc) Classify(question string, validated *models.Period) models.QuestionIntent {
	return f(question, validated)
}

type PeriodValidator interface {
	Validate(ctx context.Context, question string) models.ValidationOutcome
}

type Planner interface {
	Plan(ctx context.Context, question string) (*models.Plan, error)
}

type StrategyBuilder interface {
	Build(intent models.QuestionIntent, validated models.Period, question string, plan *models.Plan) (models.ExecutionStrategy, error)
}

type Executor interface {
	Execute(ctx context.Context, s models.ExecutionStrategy) (models.ExecutionResult, error)
}

type ResponseBuilder interface {
	Build(question string, result models.ExecutionResult, strategy models.ExecutionStrategy, validation *models.SemanticValidation) models.StandardResponse
}

type Suggester interface {
	Suggest(ctx context.Context, question string, scope models.ScopeType) ([]string, string)
}

// Deps holds the collaborators of the pipeline. Classifier, Planner,
// Suggester and Observability are optional.
type Deps struct {
	Gate          Gate
	Classifier    IntentClassifier
	Validator     PeriodValidator
	Planner       Planner
	Strategies    StrategyBuilder
	Executor      Executor
	Responses     ResponseBuilder
	Suggester     Suggester
	Observability *observability.Observability
	Logger        logger.Logger
}

// Pipeline runs one question through every stage exactly once, in order.
type Pipeline struct {
	deps   Deps
	obs    *observability.Observability
	logger logger.Logger
}

func NewPipeline(deps Deps) *Pipeline {
	if deps.Classifier == nil {
		deps.Classifier = ClassifierFunc(classifyintent.Classify)
	}
	obs := deps.Observability
	if obs == nil {
		obs = observability.Noop()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Pipeline{deps: deps, obs: obs, logger: log}
}

func requestID(ctx context.Context) string {
	if id := observability.RequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// run is the state of one request.
type run struct {
	question  string
	requestID string
	start     time.Time
	chain     []string
	metadata  map[string]any
	log       logger.Logger
}

// Process answers a question. The only error returned is a strategy that no
// executor can run; every other failure becomes a response.
func (p *Pipeline) Process(ctx context.Context, question string) (*models.StandardResponse, error) {
	r := &run{
		question:  question,
		requestID: requestID(ctx),
		start:     time.Now(),
		metadata:  map[string]any{},
	}
	r.metadata["request_id"] = r.requestID
	r.log = p.logger.With(map[string]interface{}{"requestId": r.requestID})

	ctx, span := p.obs.StartSpan(ctx, "process-question", attribute.String("request_id", r.requestID))
	defer span.End()

	resp, err := p.process(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.finish(ctx, r, string(models.StatusError))
		return nil, err
	}
	resp.AgentChain = r.chain
	resp.Metadata = r.metadata
	resp.Metadata["duration_ms"] = time.Since(r.start).Milliseconds()
	span.SetAttributes(attribute.String("status", string(resp.Status)))
	p.finish(ctx, r, string(resp.Status))
	return resp, nil
}

func (p *Pipeline) finish(ctx context.Context, r *run, status string) {
	metrics.QuestionsTotal.WithLabelValues(status).Inc()
	p.obs.RecordQuestion(ctx, status, time.Since(r.start))
	r.log.Info("question processed", map[string]interface{}{
		"status":      status,
		"duration_ms": time.Since(r.start).Milliseconds(),
	})
}

func (p *Pipeline) process(ctx context.Context, r *run) (*models.StandardResponse, error) {
	// Validate
	var scope models.ScopeCheck
	p.stage(ctx, r, StageValidate, "question_gate", func(context.Context) error {
		scope = p.deps.Gate.Check(r.question)
		return nil
	})
	r.metadata["scope_type"] = string(scope.ScopeType)
	if scope.Invalid() {
		return p.rejected(r, scope), nil
	}
	if !scope.Valid {
		return p.outOfScope(ctx, r, scope), nil
	}

	// ClassifyIntent
	var intent models.QuestionIntent
	p.stage(ctx, r, StageClassifyIntent, "intent_classifier", func(context.Context) error {
		intent = p.deps.Classifier.Classify(r.question, nil)
		return nil
	})

	// SemanticValidate
	var outcome models.ValidationOutcome
	p.stage(ctx, r, StageSemanticValidate, "semantic_validator", func(ctx context.Context) error {
		outcome = p.deps.Validator.Validate(ctx, r.question)
		return nil
	})
	validation := outcome.Validation
	validated := validation.ValidatedPeriod
	if !outcome.Degraded {
		intent = classifyintent.Refine(intent, validated)
	}
	r.metadata["intent"] = intent
	r.metadata["validation"] = validation
	r.metadata["degraded"] = outcome.Degraded
	if outcome.Degraded {
		r.log.Warn("continuing with degraded period validation", map[string]interface{}{"period": string(validated)})
	}

	// BuildStrategy
	var strategy models.ExecutionStrategy
	err := p.stage(ctx, r, StageBuildStrategy, "strategy_builder", func(ctx context.Context) error {
		plan := p.plan(ctx, r, intent, validated)
		var err error
		strategy, err = p.deps.Strategies.Build(intent, validated, r.question, plan)
		return err
	})
	if err != nil {
		r.log.Error("no strategy for question", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	r.metadata["corrected_intent"] = buildstrategy.Corrected(intent, validated, r.question).IntentType
	r.metadata["tool"] = string(strategy.Tool)
	r.metadata["format"] = string(strategy.ExpectedFormat)

	// Execute
	var result models.ExecutionResult
	err = p.stage(ctx, r, StageExecute, "query_executor", func(ctx context.Context) error {
		var err error
		result, err = p.deps.Executor.Execute(ctx, strategy)
		return err
	})
	if err != nil {
		r.log.Error("strategy cannot be executed", map[string]interface{}{"tool": string(strategy.Tool), "error": err.Error()})
		if errors.Normalize(err).Code == errors.ErrCodeUnknownTool {
			return nil, errors.NewStrategyUnresolvableError(string(strategy.Tool))
		}
		return nil, err
	}

	// BuildResponse
	var resp models.StandardResponse
	p.stage(ctx, r, StageBuildResponse, "response_builder", func(context.Context) error {
		resp = p.deps.Responses.Build(r.question, result, strategy, &validation)
		return nil
	})
	r.metadata["data"] = resp.Metadata
	return &resp, nil
}

// plan asks the planner for the default strategy branch only. A planning
// failure is recorded and the strategy is built without a plan.
func (p *Pipeline) plan(ctx context.Context, r *run, intent models.QuestionIntent, validated models.Period) *models.Plan {
	if p.deps.Planner == nil || !buildstrategy.NeedsPlan(intent, validated, r.question) {
		return nil
	}
	var plan *models.Plan
	_ = p.stage(ctx, r, StagePlan, "planner", func(ctx context.Context) error {
		var err error
		plan, err = p.deps.Planner.Plan(ctx, r.question)
		if err != nil {
			r.metadata["plan_error"] = string(errors.Normalize(err).Code)
			r.log.Warn("planning failed, building strategy without a plan", map[string]interface{}{"error": err.Error()})
			plan = nil
		}
		return err
	})
	return plan
}

func (p *Pipeline) rejected(r *run, scope models.ScopeCheck) *models.StandardResponse {
	answer := ErrorAnswer
	if scope.Message != "" {
		answer = validatequestion.Answer(scope)
	}
	return &models.StandardResponse{
		Question:  r.question,
		Answer:    answer,
		Unit:      "kWh",
		Period:    "unknown",
		Status:    models.StatusError,
		Type:      models.TypeError,
		Source:    "question_gate",
		ScopeType: scope.ScopeType,
		Errors:    []string{scope.Reason},
	}
}

func (p *Pipeline) outOfScope(ctx context.Context, r *run, scope models.ScopeCheck) *models.StandardResponse {
	resp := &models.StandardResponse{
		Question:  r.question,
		Answer:    validatequestion.Answer(scope),
		Unit:      "kWh",
		Period:    "unknown",
		Status:    models.StatusOutOfScope,
		Type:      models.TypeOutOfScope,
		Source:    "question_gate",
		ScopeType: scope.ScopeType,
	}
	if p.deps.Suggester != nil {
		p.stage(ctx, r, StageOutOfScope, "suggestions", func(ctx context.Context) error {
			var source string
			resp.HelpfulSuggestions, source = p.deps.Suggester.Suggest(ctx, r.question, scope.ScopeType)
			r.metadata["suggestion_source"] = source
			return nil
		})
	}
	return resp
}

// stage runs fn inside a span, records its duration and appends agent to the
// chain.
func (p *Pipeline) stage(ctx context.Context, r *run, name, agent string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := p.obs.StartSpan(ctx, name)
	defer span.End()

	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	r.chain = append(r.chain, agent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// IsUnresolvable reports whether err is the fatal strategy error.
func IsUnresolvable(err error) bool {
	return err != nil && errors.Normalize(err).Code == errors.ErrCodeStrategyUnresolvable
}
