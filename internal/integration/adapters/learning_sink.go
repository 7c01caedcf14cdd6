package adapters

import (
	"context"
	"log/slog"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// storeLearningSink records learning signals straight into the statistics store.
type storeLearningSink struct {
	repo adapter.LearningSignalRepository
}

// NewStoreLearningSink creates a sink that increments merchant statistics synchronously.
func NewStoreLearningSink(repo adapter.LearningSignalRepository) adapter.LearningSink {
	return &storeLearningSink{
		repo: repo,
	}
}

// Notify records the signal. Failures are logged and dropped.
func (s *storeLearningSink) Notify(ctx context.Context, signal entity.LearningSignal) {
	if err := s.repo.Record(ctx, signal); err != nil {
		slog.Default().Warn("Failed to record learning signal",
			"workspaceID", signal.WorkspaceID.String(),
			"merchantKey", signal.MerchantKey,
			"error", err.Error(),
		)
	}
}

// fanOutLearningSink forwards every signal to each of its sinks in order.
type fanOutLearningSink struct {
	sinks []adapter.LearningSink
}

// NewFanOutLearningSink combines sinks. Nil sinks are skipped; with a single
// remaining sink it is returned as is.
func NewFanOutLearningSink(sinks ...adapter.LearningSink) adapter.LearningSink {
	kept := make([]adapter.LearningSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &fanOutLearningSink{sinks: kept}
}

// Notify forwards the signal.
func (f *fanOutLearningSink) Notify(ctx context.Context, signal entity.LearningSignal) {
	for _, s := range f.sinks {
		s.Notify(ctx, signal)
	}
}
