// Package recurring contains recurring series use cases.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	detector "github.com/finance-tracker/bookkeeping/internal/domain/recurring"
	"github.com/finance-tracker/bookkeeping/internal/domain/valueobject"
)

// DetectRecurringSeriesInput represents the input for a detection run.
// A zero AsOf means now.
type DetectRecurringSeriesInput struct {
	WorkspaceID uuid.UUID
	AsOf        time.Time
}

// SeriesOutput represents a detected recurring series.
type SeriesOutput struct {
	ID               uuid.UUID
	MerchantKey      string
	AmountMin        int64
	AmountMax        int64
	Cadence          entity.Cadence
	Confidence       float64
	OccurrenceCount  int
	FirstSeenDate    time.Time
	LastSeenDate     time.Time
	NextExpectedDate time.Time
	Pass             entity.DetectionPass
	DetectedAt       time.Time
}

// DetectRecurringSeriesOutput represents the output of a detection run.
type DetectRecurringSeriesOutput struct {
	Series      []*SeriesOutput
	Scanned     int
	Skipped     int
	WindowStart time.Time
	WindowEnd   time.Time
}

// DetectRecurringSeriesUseCase recomputes a workspace's recurring series from
// its outflow history and replaces the stored result.
type DetectRecurringSeriesUseCase struct {
	transactionRepo adapter.TransactionRepository
	seriesRepo      adapter.RecurringSeriesRepository
	config          valueobject.DetectionConfig
	now             func() time.Time
}

// NewDetectRecurringSeriesUseCase creates a new DetectRecurringSeriesUseCase instance.
// config.AsOf is ignored; each run sets its own.
func NewDetectRecurringSeriesUseCase(
	transactionRepo adapter.TransactionRepository,
	seriesRepo adapter.RecurringSeriesRepository,
	config valueobject.DetectionConfig,
) *DetectRecurringSeriesUseCase {
	return &DetectRecurringSeriesUseCase{
		transactionRepo: transactionRepo,
		seriesRepo:      seriesRepo,
		config:          config,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs detection for one workspace.
func (uc *DetectRecurringSeriesUseCase) Execute(ctx context.Context, input DetectRecurringSeriesInput) (*DetectRecurringSeriesOutput, error) {
	startTime := time.Now()

	cfg := uc.config
	cfg.AsOf = input.AsOf
	if cfg.AsOf.IsZero() {
		cfg.AsOf = uc.now()
	}

	txs, err := uc.transactionRepo.FindOutflowsBetween(ctx, input.WorkspaceID, cfg.WindowStart(), cfg.AsOf)
	if err != nil {
		return nil, fmt.Errorf("failed to find outflows: %w", err)
	}

	result := detector.Detect(txs, cfg)
	for i := range result.Series {
		result.Series[i].ID = uuid.New()
		result.Series[i].WorkspaceID = input.WorkspaceID
	}

	if err := uc.seriesRepo.ReplaceForWorkspace(ctx, input.WorkspaceID, result.Series); err != nil {
		return nil, fmt.Errorf("failed to store recurring series: %w", err)
	}

	slog.Default().Info("Recurring detection completed",
		"workspaceID", input.WorkspaceID.String(),
		"scanned", len(txs),
		"series", len(result.Series),
		"skipped", result.Skipped,
		"duration", time.Since(startTime).String(),
	)

	return &DetectRecurringSeriesOutput{
		Series:      toOutputs(result.Series),
		Scanned:     len(txs),
		Skipped:     result.Skipped,
		WindowStart: cfg.WindowStart(),
		WindowEnd:   cfg.AsOf,
	}, nil
}

func toOutputs(series []entity.RecurringSeries) []*SeriesOutput {
	out := make([]*SeriesOutput, 0, len(series))
	for _, s := range series {
		out = append(out, &SeriesOutput{
			ID:               s.ID,
			MerchantKey:      s.MerchantKey,
			AmountMin:        s.AmountMin,
			AmountMax:        s.AmountMax,
			Cadence:          s.Cadence,
			Confidence:       s.Confidence,
			OccurrenceCount:  s.OccurrenceCount,
			FirstSeenDate:    s.FirstSeenDate,
			LastSeenDate:     s.LastSeenDate,
			NextExpectedDate: s.NextExpectedDate,
			Pass:             s.Pass,
			DetectedAt:       s.DetectedAt,
		})
	}
	return out
}
