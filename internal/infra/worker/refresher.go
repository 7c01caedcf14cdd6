// Package worker runs the periodic per-workspace refresh.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/budget"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/categorization"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/recurring"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
)

// DefaultInterval is used when Run is given a non-positive interval.
const DefaultInterval = time.Hour

// WorkspaceLister lists the workspaces to refresh.
type WorkspaceLister interface {
	ListWorkspaceIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RecurringDetector recomputes a workspace's recurring series.
type RecurringDetector interface {
	Execute(ctx context.Context, input recurring.DetectRecurringSeriesInput) (*recurring.DetectRecurringSeriesOutput, error)
}

// PerformanceRefresher recomputes a workspace's budget figures for a period.
type PerformanceRefresher interface {
	Execute(ctx context.Context, input budget.GetPerformanceInput) (*budget.GetPerformanceOutput, error)
}

// Categorizer categorizes a workspace's pending transactions.
type Categorizer interface {
	Execute(ctx context.Context, input categorization.RunCategorizationInput) (*categorization.RunCategorizationOutput, error)
}

// Refresher runs recurring detection and the current month's budget refresh
// for every workspace, optionally preceded by a categorization run.
type Refresher struct {
	workspaces  WorkspaceLister
	detector    RecurringDetector
	performance PerformanceRefresher
	categorizer Categorizer
	concurrency int
	now         func() time.Time
}

// NewRefresher creates a new Refresher. categorizer may be nil.
func NewRefresher(
	workspaces WorkspaceLister,
	detector RecurringDetector,
	performance PerformanceRefresher,
	categorizer Categorizer,
	concurrency int,
) *Refresher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Refresher{
		workspaces:  workspaces,
		detector:    detector,
		performance: performance,
		categorizer: categorizer,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Summary reports the outcome of one refresh pass.
type Summary struct {
	Workspaces int
	Failed     int
}

// RefreshAll refreshes every workspace with at most concurrency workspaces in
// flight. A failing workspace is logged and counted; the others still run.
// Only listing the workspaces or a cancelled ctx fails the pass.
func (r *Refresher) RefreshAll(ctx context.Context) (Summary, error) {
	ids, err := r.workspaces.ListWorkspaceIDs(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list workspaces: %w", err)
	}

	now := r.now()
	failed := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := r.refreshWorkspace(gctx, id, now); err != nil {
				failed[i] = true
				slog.Default().Error("Workspace refresh failed",
					"workspaceID", id.String(),
					"error", err.Error(),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Workspaces: len(ids)}
	for _, f := range failed {
		if f {
			summary.Failed++
		}
	}
	return summary, nil
}

func (r *Refresher) refreshWorkspace(ctx context.Context, workspaceID uuid.UUID, now time.Time) error {
	logger := slog.Default().With("workspaceID", workspaceID.String())

	if r.categorizer != nil {
		out, err := r.categorizer.Execute(ctx, categorization.RunCategorizationInput{WorkspaceID: workspaceID})
		switch {
		case errors.Is(err, domainerror.ErrCategorizationInProgress):
			logger.Info("Categorization already running, skipping")
		case err != nil:
			return fmt.Errorf("categorization: %w", err)
		default:
			logger.Info("Categorization complete", "categorized", out.Categorized, "defaulted", out.Defaulted)
		}
	}

	series, err := r.detector.Execute(ctx, recurring.DetectRecurringSeriesInput{
		WorkspaceID: workspaceID,
		AsOf:        now,
	})
	if err != nil {
		return fmt.Errorf("recurring detection: %w", err)
	}

	start, end := budget.MonthBounds(now)
	perf, err := r.performance.Execute(ctx, budget.GetPerformanceInput{
		WorkspaceID: workspaceID,
		Start:       start,
		End:         end,
	})
	if err != nil {
		return fmt.Errorf("budget refresh: %w", err)
	}

	logger.Info("Workspace refreshed",
		"series", len(series.Series),
		"budgetLines", len(perf.Lines),
	)
	return nil
}

// Run refreshes on every tick of interval until ctx is done. With runOnStart
// a pass runs immediately.
func (r *Refresher) Run(ctx context.Context, interval time.Duration, runOnStart bool) {
	logger := slog.Default()

	pass := func() {
		started := time.Now()
		summary, err := r.RefreshAll(ctx)
		if err != nil {
			logger.Error("Refresh pass failed", "error", err.Error())
			return
		}
		logger.Info("Refresh pass complete",
			"workspaces", summary.Workspaces,
			"failed", summary.Failed,
			"duration", time.Since(started).String(),
		)
	}

	if runOnStart {
		pass()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass()
		}
	}
}
