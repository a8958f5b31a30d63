// Package errors provides the energy agent's error codes and their mapping
// to BPMN errors for Zeebe job workers.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeQuestionInvalid    ErrorCode = "QUESTION_INVALID"
	ErrCodeQuestionOutOfScope ErrorCode = "QUESTION_OUT_OF_SCOPE"

	ErrCodeValidatorDegraded    ErrorCode = "VALIDATOR_DEGRADED"
	ErrCodeStrategyUnresolvable ErrorCode = "STRATEGY_UNRESOLVABLE"
	ErrCodeUnknownTool          ErrorCode = "UNKNOWN_TOOL"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRequestFailed   ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeLLMResponseInvalid ErrorCode = "LLM_RESPONSE_INVALID"

	ErrCodePlanValidationFailed ErrorCode = "PLAN_VALIDATION_FAILED"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeTransportFailed      ErrorCode = "TRANSPORT_FAILED"
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

func NewQuestionInvalidError(reason string) *StandardError {
	return newError(ErrCodeQuestionInvalid, "Question is empty or malformed", reason)
}

func NewQuestionOutOfScopeError(scopeType string) *StandardError {
	e := newError(ErrCodeQuestionOutOfScope, "Question is outside the electricity consumption domain", scopeType)
	e.Metadata = map[string]interface{}{"scopeType": scopeType}
	return e
}

// NewValidatorDegradedError is informational: the pipeline continues with
// the fallback period.
func NewValidatorDegradedError(err error) *StandardError {
	return newError(ErrCodeValidatorDegraded, "Semantic period validation unavailable, fallback period used", err.Error())
}

func NewStrategyUnresolvableError(toolName string) *StandardError {
	return newError(ErrCodeStrategyUnresolvable, fmt.Sprintf("No executable tool named '%s'", toolName), "")
}

func NewUnknownToolError(toolName string) *StandardError {
	return newError(ErrCodeUnknownTool, fmt.Sprintf("Tool '%s' is not registered", toolName), "")
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Failed to connect to the energy database", err.Error())
}

func NewQueryExecutionFailedError(tool string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, fmt.Sprintf("Query for tool '%s' failed", tool), err.Error())
}

func NewQueryTimeoutError(tool string) *StandardError {
	return newError(ErrCodeQueryTimeout, fmt.Sprintf("Query for tool '%s' timed out", tool), "")
}

func NewLLMTimeoutError() *StandardError {
	return newError(ErrCodeLLMTimeout, "Language model request timed out", "")
}

func NewLLMRequestFailedError(err error) *StandardError {
	return newError(ErrCodeLLMRequestFailed, "Language model request failed", err.Error())
}

func NewPlanValidationFailedError(details string) *StandardError {
	return newError(ErrCodePlanValidationFailed, "Generated plan is invalid", details)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, fmt.Sprintf("Search on index '%s' failed", index), err.Error())
}

func NewTransportError(transport string, err error) *StandardError {
	return newError(ErrCodeTransportFailed, fmt.Sprintf("Transport '%s' error", transport), err.Error())
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeQuestionInvalid:          "QUESTION_INVALID",
	ErrCodeQuestionOutOfScope:       "QUESTION_OUT_OF_SCOPE",
	ErrCodeValidatorDegraded:        "VALIDATOR_DEGRADED",
	ErrCodeStrategyUnresolvable:     "STRATEGY_UNRESOLVABLE",
	ErrCodeUnknownTool:              "UNKNOWN_TOOL",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeLLMTimeout:               "LLM_TIMEOUT",
	ErrCodeLLMRequestFailed:         "LLM_REQUEST_FAILED",
	ErrCodeLLMResponseInvalid:       "LLM_RESPONSE_INVALID",
	ErrCodePlanValidationFailed:     "PLAN_VALIDATION_FAILED",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeTransportFailed:          "TRANSPORT_FAILED",
	ErrCodeInvalidInput:             "INVALID_INPUT",
}

// GetRetryCount returns the recommended Zeebe retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeLLMRequestFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeTransportFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "QUESTION"):
		return "QUESTION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "VALIDATOR") || strings.Contains(codeStr, "PLAN"):
		return "AI"
	case strings.Contains(codeStr, "STRATEGY") || strings.Contains(codeStr, "TOOL"):
		return "STRATEGY"
	case strings.Contains(codeStr, "TRANSPORT"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
