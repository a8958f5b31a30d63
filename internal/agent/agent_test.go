package agent

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/genai/genaitest"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/observability"
	"energy-agent/internal/models"
	buildresponse "energy-agent/internal/workers/energy/build-response"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Name: "energy-agent"},
		Agent: config.AgentConfig{Tariff: 0.2, Source: "test-store", Suggestions: 3},
		Database: config.DatabaseConfig{
			Postgres: config.PostgresConfig{QueryTimeout: 1000},
		},
	}
}

func newTestAgent(t *testing.T) (*Agent, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	a, err := New(testConfig(), logger.NewTestLogger(t), Options{
		DB:            db,
		LLM:           genaitest.Reply("YESTERDAY"),
		Decorator:     buildresponse.Plain{},
		Observability: observability.Noop(),
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, mock
}

func TestNew_RegistersEveryStage(t *testing.T) {
	a, _ := newTestAgent(t)

	seen := map[string]bool{}
	for _, reg := range a.Registrations {
		assert.NotNil(t, reg.Handler, reg.TaskType)
		assert.False(t, seen[reg.TaskType], "duplicate %s", reg.TaskType)
		seen[reg.TaskType] = true
	}
	assert.Len(t, a.Registrations, 9)
	assert.True(t, seen["energy-process-question"])
	assert.True(t, seen["energy-suggest-questions"])
	assert.Nil(t, a.Elasticsearch())
}

func TestPipeline_AnswersFromStore(t *testing.T) {
	a, mock := newTestAgent(t)
	mock.ExpectQuery(`FROM energy_data`).
		WillReturnRows(sqlmock.NewRows([]string{"value", "count"}).AddRow(8.25, int64(12)))

	resp, err := a.Pipeline.Process(context.Background(), "Combien ai-je consommé hier ?")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, 8.25, resp.Value)
	assert.Equal(t, "test-store", resp.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReady(t *testing.T) {
	a, mock := newTestAgent(t)
	mock.ExpectPing()

	checks := a.Ready(context.Background())
	assert.Equal(t, map[string]error{"postgres": nil}, checks)

	mock.ExpectPing().WillReturnError(stderrors.New("connection refused"))
	assert.Error(t, a.Ready(context.Background())["postgres"])
}

func TestReady_ExtraChecks(t *testing.T) {
	a, mock := newTestAgent(t)
	mock.ExpectPing()
	a.AddCheck("zeebe", func(context.Context) error { return stderrors.New("no gateway") })

	checks := a.Ready(context.Background())
	assert.NoError(t, checks["postgres"])
	assert.EqualError(t, checks["zeebe"], "no gateway")
}

func TestConnect_RetriesPing(t *testing.T) {
	a, mock := newTestAgent(t)
	mock.ExpectPing().WillReturnError(stderrors.New("starting up"))
	mock.ExpectPing()

	require.NoError(t, a.Connect(context.Background(), 3, time.Millisecond))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	failing := func(context.Context) error {
		calls++
		return stderrors.New("down")
	}

	err := retryWithBackoff(context.Background(), failing, 3, time.Millisecond, logger.NewTestLogger(t), "probe")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "probe failed after 3 attempts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls = 0
	err = retryWithBackoff(ctx, failing, 5, time.Hour, logger.NewTestLogger(t), "probe")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
