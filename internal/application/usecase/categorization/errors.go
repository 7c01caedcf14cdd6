// Package categorization contains the transaction categorization use cases.
package categorization

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Error code constants for classifier failures.
const (
	ErrCodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrCodeAIRateLimited        = "AI_RATE_LIMITED"
	ErrCodeAIAuthError          = "AI_AUTH_ERROR"
	ErrCodeAITimeout            = "AI_TIMEOUT"
	ErrCodeAIParseError         = "AI_PARSE_ERROR"
	ErrCodeAIUnknownError       = "AI_UNKNOWN_ERROR"
)

var errorMessages = map[string]string{
	ErrCodeAIServiceUnavailable: "The classification service is temporarily unavailable. Rule-based categories were kept.",
	ErrCodeAIRateLimited:        "The classification service rate limit was reached. Try again in a few minutes.",
	ErrCodeAIAuthError:          "The classification service is misconfigured. Contact support.",
	ErrCodeAITimeout:            "Classification took longer than expected. Try again with fewer transactions.",
	ErrCodeAIParseError:         "The classification response could not be read. Try again.",
	ErrCodeAIUnknownError:       "An unexpected error occurred during classification. Try again.",
}

// ProcessingError is the last classifier failure recorded for a workspace.
type ProcessingError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

type errorRule struct {
	code      string
	retryable bool
	needles   []string
}

// errorRules are checked in order; the first rule with a matching needle wins.
var errorRules = []errorRule{
	{code: ErrCodeAIRateLimited, retryable: true, needles: []string{"rate limit", "quota", "429", "resource exhausted"}},
	{code: ErrCodeAIAuthError, retryable: false, needles: []string{"401", "403", "invalid api key", "unauthorized", "authentication", "permission denied"}},
	{code: ErrCodeAIServiceUnavailable, retryable: true, needles: []string{"connection", "network", "dial", "timeout", "unavailable", "503"}},
	{code: ErrCodeAIParseError, retryable: true, needles: []string{"parse", "json", "unmarshal", "decode"}},
}

// classifyError maps a classifier error to a ProcessingError.
func classifyError(err error, now time.Time) *ProcessingError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newProcessingError(ErrCodeAITimeout, true, now)
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return newProcessingError(rule.code, rule.retryable, now)
			}
		}
	}
	return newProcessingError(ErrCodeAIUnknownError, true, now)
}

func newProcessingError(code string, retryable bool, now time.Time) *ProcessingError {
	return &ProcessingError{
		Code:      code,
		Message:   errorMessages[code],
		Retryable: retryable,
		Timestamp: now,
	}
}
