package recurring

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
)

// ListRecurringSeriesInput represents the input for listing recurring series.
type ListRecurringSeriesInput struct {
	WorkspaceID   uuid.UUID
	MinConfidence float64
}

// ListRecurringSeriesOutput represents the series of the latest detection run.
type ListRecurringSeriesOutput struct {
	Series []*SeriesOutput
}

// ListRecurringSeriesUseCase handles listing stored recurring series.
type ListRecurringSeriesUseCase struct {
	seriesRepo adapter.RecurringSeriesRepository
}

// NewListRecurringSeriesUseCase creates a new ListRecurringSeriesUseCase instance.
func NewListRecurringSeriesUseCase(seriesRepo adapter.RecurringSeriesRepository) *ListRecurringSeriesUseCase {
	return &ListRecurringSeriesUseCase{
		seriesRepo: seriesRepo,
	}
}

// Execute lists the stored series at or above MinConfidence.
func (uc *ListRecurringSeriesUseCase) Execute(ctx context.Context, input ListRecurringSeriesInput) (*ListRecurringSeriesOutput, error) {
	series, err := uc.seriesRepo.FindByWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find recurring series: %w", err)
	}

	kept := series[:0:0]
	for _, s := range series {
		if s.Confidence >= input.MinConfidence {
			kept = append(kept, s)
		}
	}
	return &ListRecurringSeriesOutput{Series: toOutputs(kept)}, nil
}
