package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"energy-agent/internal/common/database"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type processFunc func(ctx context.Context, question string) (*models.StandardResponse, error)

func (f processFunc) Process(ctx context.Context, question string) (*models.StandardResponse, error) {
	return f(ctx, question)
}

type readyFunc func(ctx context.Context) map[string]error

func (f readyFunc) Ready(ctx context.Context) map[string]error {
	return f(ctx)
}

func newRouter(t *testing.T, p Processor, r ReadinessChecker) *gin.Engine {
	return NewServer(p, r, nil, time.Second, logger.NewTestLogger(t)).Router()
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAskQuestion(t *testing.T) {
	var got string
	router := newRouter(t, processFunc(func(_ context.Context, q string) (*models.StandardResponse, error) {
		got = q
		return &models.StandardResponse{
			Question: q,
			Answer:   "⚡ Vous avez consommé 12.5 kWh hier.",
			Value:    12.5,
			Unit:     "kWh",
			Status:   models.StatusSuccess,
			Type:     models.TypeConsumption,
		}, nil
	}), nil)

	w := do(router, http.MethodPost, "/api/v1/questions", `{"question":"Quelle est ma consommation hier ?","request_id":"r-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Quelle est ma consommation hier ?", got)

	var resp models.StandardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12.5, resp.Value)
	assert.Equal(t, models.StatusSuccess, resp.Status)
}

func TestAskQuestion_SchemaViolations(t *testing.T) {
	called := false
	router := newRouter(t, processFunc(func(context.Context, string) (*models.StandardResponse, error) {
		called = true
		return &models.StandardResponse{}, nil
	}), nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{}`},
		{"question not a string", `{"question": 42}`},
		{"unknown field", `{"question":"hier ?","user":"bob"}`},
		{"not json", `question=hier`},
		{"too long", `{"question":"` + strings.Repeat("a", 1001) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/v1/questions", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_INPUT", resp.Code)
			assert.NotEmpty(t, resp.Details)
		})
	}
	assert.False(t, called)
}

func TestAskQuestion_Unresolvable(t *testing.T) {
	router := newRouter(t, processFunc(func(context.Context, string) (*models.StandardResponse, error) {
		return nil, errors.NewStrategyUnresolvableError("forecast_tool")
	}), nil)

	w := do(router, http.MethodPost, "/api/v1/questions", `{"question":"Quelle sera ma consommation demain ?"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "STRATEGY_UNRESOLVABLE", resp.Code)
	assert.Equal(t, UnresolvableAnswer, resp.Answer)
}

func TestListPeriods(t *testing.T) {
	w := do(newRouter(t, nil, nil), http.MethodGet, "/api/v1/periods", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Periods []periodView `json:"periods"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Periods)

	byCode := map[models.PeriodCode]models.Period{}
	for _, p := range body.Periods {
		byCode[p.Code] = p.Period
	}
	assert.Equal(t, models.PeriodYesterday, byCode[models.CodeYesterday])
	assert.Equal(t, models.Period7Days, byCode[models.CodeLast7Days])
}

func TestListTools(t *testing.T) {
	w := do(newRouter(t, nil, nil), http.MethodGet, "/api/v1/tools", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"aggregate_temporal"`)
	assert.Contains(t, w.Body.String(), `"version"`)
}

func TestHealthAndReady(t *testing.T) {
	healthy := newRouter(t, nil, readyFunc(func(context.Context) map[string]error {
		return map[string]error{"postgres": nil}
	}))
	assert.Equal(t, http.StatusOK, do(healthy, http.MethodGet, "/health", "").Code)

	w := do(healthy, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok"}}`, w.Body.String())

	down := newRouter(t, nil, readyFunc(func(context.Context) map[string]error {
		return map[string]error{"postgres": nil, "redis": stderrors.New("connection refused")}
	}))
	w = do(down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"not_ready","checks":{"postgres":"ok","redis":"connection refused"}}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	router := newRouter(t, nil, nil)
	do(router, http.MethodGet, "/health", "")

	w := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "energy_http_requests_total")
}

type statsFunc func(ctx context.Context) (database.DatasetStats, error)

func (f statsFunc) Stats(ctx context.Context) (database.DatasetStats, error) {
	return f(ctx)
}

func TestDataset(t *testing.T) {
	first := time.Date(2006, 12, 16, 17, 0, 0, 0, time.UTC)
	server := NewServer(nil, nil, nil, time.Second, logger.NewTestLogger(t)).
		WithDataset(statsFunc(func(context.Context) (database.DatasetStats, error) {
			return database.DatasetStats{Rows: 34589, First: first, Last: first.Add(time.Hour)}, nil
		}))

	w := do(server.Router(), http.MethodGet, "/api/v1/dataset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows":34589`)

	assert.Equal(t, http.StatusNotFound, do(newRouter(t, nil, nil), http.MethodGet, "/api/v1/dataset", "").Code)
}
