// Package api exposes the question pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"energy-agent/internal/common/database"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/metrics"
	"energy-agent/internal/common/observability"
	"energy-agent/internal/common/validation"
	"energy-agent/internal/models"
	"energy-agent/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnresolvableAnswer is returned with a 500 when no tool can answer.
const UnresolvableAnswer = "❌ Désolé, je ne sais pas encore répondre à ce type de question."

const maxBodyBytes = 64 << 10

var questionSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["question"],
	"properties": {
		"question":   {"type": "string", "maxLength": 1000},
		"request_id": {"type": "string", "maxLength": 128}
	},
	"additionalProperties": false
}`)

// Processor answers one question.
type Processor interface {
	Process(ctx context.Context, question string) (*models.StandardResponse, error)
}

// ReadinessChecker pings the backends; a nil error means healthy.
type ReadinessChecker interface {
	Ready(ctx context.Context) map[string]error
}

// DatasetReporter describes the analytical store.
type DatasetReporter interface {
	Stats(ctx context.Context) (database.DatasetStats, error)
}

type QuestionRequest struct {
	Question  string `json:"question"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error   string                       `json:"error"`
	Code    string                       `json:"code,omitempty"`
	Answer  string                       `json:"answer,omitempty"`
	Details []validation.ValidationError `json:"details,omitempty"`
}

type Server struct {
	processor Processor
	readiness ReadinessChecker
	catalog   *registry.ToolCatalog
	dataset   DatasetReporter
	timeout   time.Duration
	logger    logger.Logger
}

func NewServer(processor Processor, readiness ReadinessChecker, catalog *registry.ToolCatalog, timeout time.Duration, log logger.Logger) *Server {
	if catalog == nil {
		catalog = registry.Default()
	}
	return &Server{
		processor: processor,
		readiness: readiness,
		catalog:   catalog,
		timeout:   timeout,
		logger:    log.With(map[string]interface{}{"component": "http"}),
	}
}

// WithDataset enables GET /api/v1/dataset.
func (s *Server) WithDataset(d DatasetReporter) *Server {
	s.dataset = d
	return s
}

// Router registers every route on a new gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/questions", s.askQuestion)
	v1.GET("/periods", s.listPeriods)
	v1.GET("/tools", s.listTools)
	if s.dataset != nil {
		v1.GET("/dataset", s.datasetStats)
	}
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		if route == "/health" || route == "/metrics" {
			return
		}
		s.logger.Info("request served", map[string]interface{}{
			"method":      c.Request.Method,
			"route":       route,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

func (s *Server) askQuestion(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot read request body"})
		return
	}
	if res := questionSchema.ValidateJSON(body); !res.Valid {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "request does not match the question schema",
			Code:    string(errors.ErrCodeInvalidInput),
			Details: res.Errors,
		})
		return
	}

	var req QuestionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if req.RequestID != "" {
		ctx = observability.WithRequestID(ctx, req.RequestID)
	}

	resp, err := s.processor.Process(ctx, req.Question)
	if err != nil {
		se := errors.Normalize(err)
		s.logger.Error("question failed", map[string]interface{}{
			"errorCode": string(se.Code),
			"error":     err.Error(),
		})
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:  se.Message,
			Code:   string(se.Code),
			Answer: UnresolvableAnswer,
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

type periodView struct {
	Code   models.PeriodCode `json:"code"`
	Period models.Period     `json:"period"`
	Label  string            `json:"label"`
}

func (s *Server) listPeriods(c *gin.Context) {
	codes := models.PeriodCodes()
	out := make([]periodView, 0, len(codes))
	for _, code := range codes {
		p, _ := code.Period()
		out = append(out, periodView{Code: code, Period: p, Label: code.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"periods": out})
}

func (s *Server) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": s.catalog.Version,
		"tools":   s.catalog.Tools,
	})
}

func (s *Server) datasetStats(c *gin.Context) {
	stats, err := s.dataset.Stats(c.Request.Context())
	if err != nil {
		se := errors.Normalize(err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: string(se.Code)})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) ready(c *gin.Context) {
	if s.readiness == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	status, code := "ready", http.StatusOK
	for name, err := range s.readiness.Ready(ctx) {
		if err != nil {
			checks[name] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}
