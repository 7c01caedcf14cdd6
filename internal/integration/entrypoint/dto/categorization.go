package dto

import (
	"time"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/categorization"
)

// RunCategorizationResponse represents the result of a categorization run.
type RunCategorizationResponse struct {
	JobID        string `json:"job_id"`
	Pending      int    `json:"pending"`
	Categorized  int    `json:"categorized"`
	Learned      int    `json:"learned"`
	AIClassified int    `json:"ai_classified"`
	Defaulted    int    `json:"defaulted"`
	Skipped      int    `json:"skipped"`
}

// ProcessingErrorResponse represents a classifier failure in the status response.
type ProcessingErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Timestamp string `json:"timestamp"`
}

// CategorizationStatusResponse represents the response for categorization status.
type CategorizationStatusResponse struct {
	UncategorizedCount int                      `json:"uncategorized_count"`
	IsProcessing       bool                     `json:"is_processing"`
	JobID              string                   `json:"job_id,omitempty"`
	Error              *ProcessingErrorResponse `json:"error,omitempty"`
}

// ToRunCategorizationResponse converts a RunCategorizationOutput to its response DTO.
func ToRunCategorizationResponse(output *categorization.RunCategorizationOutput) RunCategorizationResponse {
	return RunCategorizationResponse{
		JobID:        output.JobID,
		Pending:      output.Pending,
		Categorized:  output.Categorized,
		Learned:      output.Learned,
		AIClassified: output.AIClassified,
		Defaulted:    output.Defaulted,
		Skipped:      output.Skipped,
	}
}

// ToCategorizationStatusResponse converts a GetStatusOutput to its response DTO.
func ToCategorizationStatusResponse(output *categorization.GetStatusOutput) CategorizationStatusResponse {
	response := CategorizationStatusResponse{
		UncategorizedCount: output.UncategorizedCount,
		IsProcessing:       output.IsProcessing,
		JobID:              output.JobID,
	}
	if output.Error != nil {
		response.Error = &ProcessingErrorResponse{
			Code:      output.Error.Code,
			Message:   output.Error.Message,
			Retryable: output.Error.Retryable,
			Timestamp: output.Error.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	return response
}
