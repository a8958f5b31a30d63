package executestrategy

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{Timeout: time.Second, QueryTimeout: time.Second, Tariff: 0.2, Source: "test-store"}
}

func yesterday() models.ExecutionStrategy {
	return models.ExecutionStrategy{
		Tool:           models.ToolAggregateTemporal,
		Params:         models.TemporalParams{Period: models.PeriodYesterday, Aggregation: "sum"},
		ExpectedFormat: models.FormatTemporal,
	}
}

func TestExecutor_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM energy_data`).
		WithArgs(1, 0).
		WillReturnRows(sqlmock.NewRows([]string{"value", "count"}).AddRow(12.5, int64(12)))

	res, err := NewExecutor(db, testConfig(), logger.NewTestLogger(t)).Execute(context.Background(), yesterday())
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "test-store", res.Source)

	m := res.AsMap()
	assert.Equal(t, "success", m["status"])
	assert.Equal(t, "aggregate_temporal", m["tool_used"])
	data := m["data"].(map[string]any)
	assert.Equal(t, 12.5, data["summary"].(map[string]any)["total"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`FROM energy_data`).
			WillReturnRows(sqlmock.NewRows([]string{"value", "count"}).AddRow(12.5, int64(12)))
	}

	ex := NewExecutor(db, testConfig(), logger.NewNoOpLogger())
	first, err := ex.Execute(context.Background(), yesterday())
	require.NoError(t, err)
	second, err := ex.Execute(context.Background(), yesterday())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExecutor_BackendErrorBecomesResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM energy_data`).WillReturnError(stderrors.New("connection reset by peer"))

	res, err := NewExecutor(db, testConfig(), logger.NewTestLogger(t)).Execute(context.Background(), yesterday())
	require.NoError(t, err)
	assert.False(t, res.Succeeded())
	assert.Contains(t, res.Message, "connection reset by peer")
	assert.Equal(t, map[string]any{"status": "error", "message": res.Message}, res.AsMap())
}

func TestExecutor_InvalidPeriodBecomesResult(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := models.ExecutionStrategy{Tool: models.ToolAggregate, Params: models.AggregateParams{Period: "next week"}}
	res, err := NewExecutor(db, testConfig(), logger.NewNoOpLogger()).Execute(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionError, res.Status)
}

func TestExecutor_NoDatabase(t *testing.T) {
	res, err := NewExecutor(nil, testConfig(), logger.NewNoOpLogger()).Execute(context.Background(), yesterday())
	require.NoError(t, err)
	assert.False(t, res.Succeeded())
}

func TestExecutor_UnknownTool(t *testing.T) {
	s := models.ExecutionStrategy{Tool: "forecast", Params: models.AggregateParams{Period: models.Period7Days}}
	_, err := NewExecutor(nil, testConfig(), logger.NewNoOpLogger()).Execute(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownTool, errors.Normalize(err).Code)
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(testConfig(), nil, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.Normalize(err).Code)

	out, err := h.Execute(context.Background(), &Input{Strategy: yesterday()})
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionError, out.Result.Status)
}
