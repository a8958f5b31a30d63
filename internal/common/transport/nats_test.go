package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/observability"
	"energy-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type processorFunc func(ctx context.Context, question string) (*models.StandardResponse, error)

func (f processorFunc) Process(ctx context.Context, question string) (*models.StandardResponse, error) {
	return f(ctx, question)
}

func newTestTransport(t *testing.T, p QuestionProcessor) *NATSTransport {
	return newTransport(nil, config.NATSConfig{Subject: "energy.questions", Queue: "energy-agent", Timeout: 1000}, p, logger.NewTestLogger(t))
}

func decode(t *testing.T, b []byte) QuestionReply {
	t.Helper()
	var r QuestionReply
	require.NoError(t, json.Unmarshal(b, &r))
	return r
}

func TestHandlePayload_Success(t *testing.T) {
	var gotID string
	nt := newTestTransport(t, processorFunc(func(ctx context.Context, q string) (*models.StandardResponse, error) {
		gotID = observability.RequestID(ctx)
		return &models.StandardResponse{Question: q, Answer: "12.50 kWh", Value: 12.5, Status: models.StatusSuccess}, nil
	}))

	reply := decode(t, nt.handlePayload(context.Background(), []byte(`{"request_id":"r-1","question":"Quelle a été ma consommation hier ?"}`)))
	assert.Equal(t, "r-1", reply.RequestID)
	assert.Equal(t, "r-1", gotID)
	require.NotNil(t, reply.Response)
	assert.Equal(t, 12.5, reply.Response.Value)
	assert.Empty(t, reply.ErrorCode)
}

func TestHandlePayload_GeneratesRequestID(t *testing.T) {
	nt := newTestTransport(t, processorFunc(func(_ context.Context, q string) (*models.StandardResponse, error) {
		return &models.StandardResponse{Question: q}, nil
	}))

	reply := decode(t, nt.handlePayload(context.Background(), []byte(`{"question":"consommation ?"}`)))
	assert.Len(t, reply.RequestID, 36)
}

func TestHandlePayload_BlankQuestionReachesPipeline(t *testing.T) {
	var got *string
	nt := newTestTransport(t, processorFunc(func(_ context.Context, q string) (*models.StandardResponse, error) {
		got = &q
		return &models.StandardResponse{
			Question: q,
			Answer:   "❌ Votre question est trop courte. Pouvez-vous la reformuler ?",
			Status:   models.StatusError,
		}, nil
	}))

	reply := decode(t, nt.handlePayload(context.Background(), []byte(`{"request_id":"r","question":"  "}`)))
	require.NotNil(t, got)
	assert.Equal(t, "  ", *got)
	assert.Empty(t, reply.ErrorCode)
	require.NotNil(t, reply.Response)
	assert.Equal(t, models.StatusError, reply.Response.Status)
}

func TestHandlePayload_Errors(t *testing.T) {
	failing := processorFunc(func(context.Context, string) (*models.StandardResponse, error) {
		return nil, fmt.Errorf("%w: forecast_tool", stderrors.New("STRATEGY_UNRESOLVABLE"))
	})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"question":`, "INVALID_INPUT"},
		{"pipeline error", `{"request_id":"r","question":"prévision demain"}`, "STRATEGY_UNRESOLVABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := decode(t, newTestTransport(t, failing).handlePayload(context.Background(), []byte(tt.body)))
			assert.Equal(t, tt.code, reply.ErrorCode)
			assert.Nil(t, reply.Response)
		})
	}
}
