package categorization

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
)

// GetStatusInput represents the input for getting categorization status.
type GetStatusInput struct {
	WorkspaceID uuid.UUID
}

// GetStatusOutput represents the output of getting categorization status.
type GetStatusOutput struct {
	UncategorizedCount int              `json:"uncategorized_count"`
	IsProcessing       bool             `json:"is_processing"`
	JobID              string           `json:"job_id,omitempty"`
	Error              *ProcessingError `json:"error,omitempty"`
}

// GetStatusUseCase handles retrieving categorization status.
type GetStatusUseCase struct {
	transactionRepo   adapter.TransactionRepository
	processingTracker ProcessingTracker
}

// NewGetStatusUseCase creates a new GetStatusUseCase instance.
func NewGetStatusUseCase(transactionRepo adapter.TransactionRepository, processingTracker ProcessingTracker) *GetStatusUseCase {
	return &GetStatusUseCase{
		transactionRepo:   transactionRepo,
		processingTracker: processingTracker,
	}
}

// Execute retrieves the categorization status of a workspace.
func (uc *GetStatusUseCase) Execute(ctx context.Context, input GetStatusInput) (*GetStatusOutput, error) {
	count, err := uc.transactionRepo.CountUncategorized(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count uncategorized transactions: %w", err)
	}

	output := &GetStatusOutput{UncategorizedCount: count}
	if uc.processingTracker != nil {
		output.IsProcessing = uc.processingTracker.IsProcessing(input.WorkspaceID)
		output.JobID = uc.processingTracker.GetJobID(input.WorkspaceID)
		output.Error = uc.processingTracker.GetError(input.WorkspaceID)
	}
	return output, nil
}
