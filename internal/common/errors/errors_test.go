package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      string
		retryable bool
		retries   int
	}{
		{"query failure retried", NewQueryExecutionFailedError("aggregate", fmt.Errorf("conn reset")), "QUERY_EXECUTION_FAILED", true, 3},
		{"llm timeout retried once", NewLLMTimeoutError(), "LLM_TIMEOUT", true, 1},
		{"unresolvable strategy is business error", NewStrategyUnresolvableError("forecast_tool"), "STRATEGY_UNRESOLVABLE", false, 0},
		{"out of scope", NewQuestionOutOfScopeError("non_energy"), "QUESTION_OUT_OF_SCOPE", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.code, b.Code)
			assert.Equal(t, tt.retryable, b.Retryable)
			assert.Equal(t, tt.retries, b.Retries)
			assert.Equal(t, string(tt.err.Code), b.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestToErrorVariables(t *testing.T) {
	b := ConvertToBPMNError(NewPlanValidationFailedError("cycle between s1 and s2"))
	vars := b.ToErrorVariables()
	assert.Equal(t, "PLAN_VALIDATION_FAILED", vars["errorCode"])
	assert.Equal(t, "cycle between s1 and s2", vars["errorDetails"])
	assert.Equal(t, false, vars["retryable"])
}

func TestNormalize(t *testing.T) {
	sentinel := stderrors.New("LLM_REQUEST_FAILED")
	wrapped := fmt.Errorf("%w: status 503", sentinel)

	got := Normalize(wrapped)
	assert.Equal(t, ErrCodeLLMRequestFailed, got.Code)
	assert.True(t, got.Retryable)

	std := NewUnknownToolError("x")
	assert.Same(t, std, Normalize(fmt.Errorf("execute: %w", std)))

	got = Normalize(stderrors.New("something else"))
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "something else", got.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "QUESTION", GetErrorCategory(ErrCodeQuestionInvalid))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeValidatorDegraded))
	assert.Equal(t, "STRATEGY", GetErrorCategory(ErrCodeUnknownTool))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "TRANSPORT", GetErrorCategory(ErrCodeTransportFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
}
