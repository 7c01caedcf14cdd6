package categorization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/patternrule"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
	"github.com/finance-tracker/bookkeeping/internal/domain/resolver"
	"github.com/finance-tracker/bookkeeping/internal/domain/taxonomy"
)

const (
	// BatchSize is the number of transactions sent per classifier request.
	BatchSize = 40

	// BatchTimeout bounds a single classifier request.
	BatchTimeout = 45 * time.Second

	// MaxBatches caps classifier requests per run (BatchSize * MaxBatches transactions).
	MaxBatches = 50

	// LearnedMinHits is how many corrections a merchant needs before its
	// learned category is used.
	LearnedMinHits = 2

	learnedBaseConfidence = 0.8
	learnedHitStep        = 0.05
	learnedMaxConfidence  = 0.95
)

// Options tune a RunCategorizationUseCase.
type Options struct {
	UseAI          bool
	LearnedMinHits int
	BatchTimeout   time.Duration
	Now            func() time.Time
}

// RunCategorizationInput represents the input for a categorization run.
type RunCategorizationInput struct {
	WorkspaceID uuid.UUID
}

// RunCategorizationOutput reports what a run wrote.
type RunCategorizationOutput struct {
	JobID        string `json:"job_id"`
	Pending      int    `json:"pending"`
	Categorized  int    `json:"categorized"`
	Learned      int    `json:"learned"`
	AIClassified int    `json:"ai_classified"`
	Defaulted    int    `json:"defaulted"`
	Skipped      int    `json:"skipped"`
}

// RunCategorizationUseCase writes the AI category slot of every transaction
// that has neither a user nor an AI category. Each transaction is placed by,
// in order: learned corrections, the rule table, and for rule defaults the
// external classifier when it is available.
type RunCategorizationUseCase struct {
	transactionRepo   adapter.TransactionRepository
	learningRepo      adapter.LearningSignalRepository
	aiService         adapter.AICategorizationService
	taxLoader         *category.TaxonomyLoader
	rulesLoader       *patternrule.RuleSetLoader
	processingTracker ProcessingTracker
	opts              Options
}

// NewRunCategorizationUseCase creates a new RunCategorizationUseCase instance.
// learningRepo and aiService may be nil.
func NewRunCategorizationUseCase(
	transactionRepo adapter.TransactionRepository,
	learningRepo adapter.LearningSignalRepository,
	aiService adapter.AICategorizationService,
	taxLoader *category.TaxonomyLoader,
	rulesLoader *patternrule.RuleSetLoader,
	processingTracker ProcessingTracker,
	opts Options,
) *RunCategorizationUseCase {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.LearnedMinHits <= 0 {
		opts.LearnedMinHits = LearnedMinHits
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = BatchTimeout
	}
	return &RunCategorizationUseCase{
		transactionRepo:   transactionRepo,
		learningRepo:      learningRepo,
		aiService:         aiService,
		taxLoader:         taxLoader,
		rulesLoader:       rulesLoader,
		processingTracker: processingTracker,
		opts:              opts,
	}
}

type pendingAssignment struct {
	tx         *entity.Transaction
	assignment resolver.Assignment
}

// Execute runs categorization for one workspace. Concurrent runs for the
// same workspace are rejected.
func (uc *RunCategorizationUseCase) Execute(ctx context.Context, input RunCategorizationInput) (*RunCategorizationOutput, error) {
	jobID := uuid.New().String()
	if !uc.processingTracker.TryStart(input.WorkspaceID, jobID) {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeCategorizationInProgress,
			"categorization is already in progress",
			domainerror.ErrCategorizationInProgress,
		)
	}
	defer uc.processingTracker.ClearProcessing(input.WorkspaceID)
	uc.processingTracker.ClearError(input.WorkspaceID)

	startTime := time.Now()
	logger := slog.Default().With("jobID", jobID, "workspaceID", input.WorkspaceID.String())

	tax, err := uc.taxLoader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	rs, err := uc.rulesLoader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	pending, err := uc.transactionRepo.FindPendingAICategorization(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending transactions: %w", err)
	}

	output := &RunCategorizationOutput{JobID: jobID, Pending: len(pending)}
	logger.Info("Starting categorization run", "transactionCount", len(pending), "ruleCount", rs.Len())

	learned := uc.learnedCategories(ctx, input.WorkspaceID, pending, tax)

	assigned := make([]pendingAssignment, 0, len(pending))
	defaults := make([]*entity.Transaction, 0)
	for _, tx := range pending {
		if a, ok := learned[merchant.Key(tx)]; ok {
			assigned = append(assigned, pendingAssignment{tx: tx, assignment: a})
			output.Learned++
			continue
		}

		m := rs.MatchTransaction(tx)
		a, err := resolver.AssignmentFor(m, tax)
		if err != nil {
			logger.Warn("Rule target missing from taxonomy",
				"transactionID", tx.ID.String(),
				"parent", m.Parent,
				"child", m.Child,
			)
			output.Skipped++
			continue
		}
		if m.IsDefault() {
			defaults = append(defaults, tx)
		}
		assigned = append(assigned, pendingAssignment{tx: tx, assignment: a})
	}

	classified := uc.classify(ctx, input.WorkspaceID, defaults, tax, logger)
	for i := range assigned {
		if a, ok := classified[assigned[i].tx.ID]; ok {
			assigned[i].assignment = a
			output.AIClassified++
		}
	}

	now := uc.opts.Now()
	for _, p := range assigned {
		updated, err := resolver.ApplyAICategory(p.tx, p.assignment, tax, now)
		if err != nil {
			if errors.Is(err, domainerror.ErrAICategoryAlreadySet) {
				output.Skipped++
				continue
			}
			return nil, err
		}
		if err := uc.transactionRepo.UpdateAICategory(ctx, updated); err != nil {
			if errors.Is(err, domainerror.ErrAICategoryAlreadySet) {
				output.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to update ai category: %w", err)
		}
		output.Categorized++
		if p.assignment.Method == entity.MethodDefault {
			output.Defaulted++
		}
	}

	logger.Info("Categorization run completed",
		"categorized", output.Categorized,
		"learned", output.Learned,
		"aiClassified", output.AIClassified,
		"defaulted", output.Defaulted,
		"skipped", output.Skipped,
		"duration", time.Since(startTime).String(),
	)

	return output, nil
}

// learnedCategories returns assignments for merchants users have corrected
// often enough. Lookup failures only disable learning for this run.
func (uc *RunCategorizationUseCase) learnedCategories(
	ctx context.Context,
	workspaceID uuid.UUID,
	pending []*entity.Transaction,
	tax *taxonomy.Taxonomy,
) map[string]resolver.Assignment {
	learned := make(map[string]resolver.Assignment)
	if uc.learningRepo == nil {
		return learned
	}

	seen := make(map[string]struct{})
	for _, tx := range pending {
		key := merchant.Key(tx)
		if key == merchant.Unknown {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		stats, err := uc.learningRepo.FindByMerchant(ctx, workspaceID, key)
		if err != nil {
			slog.Default().Warn("Learned category lookup failed",
				"workspaceID", workspaceID.String(),
				"error", err.Error(),
			)
			return learned
		}
		if len(stats) == 0 || stats[0].HitCount < uc.opts.LearnedMinHits {
			continue
		}

		confidence := min(learnedBaseConfidence+learnedHitStep*float64(stats[0].HitCount-uc.opts.LearnedMinHits), learnedMaxConfidence)
		a, err := resolver.AssignmentForCategory(stats[0].CategoryID, confidence, entity.MethodLearned, tax)
		if err != nil {
			continue
		}
		learned[key] = a
	}
	return learned
}

// classify asks the external classifier about rule defaults. A failed batch
// stops classification, records the error and keeps the rule defaults.
func (uc *RunCategorizationUseCase) classify(
	ctx context.Context,
	workspaceID uuid.UUID,
	defaults []*entity.Transaction,
	tax *taxonomy.Taxonomy,
	logger *slog.Logger,
) map[uuid.UUID]resolver.Assignment {
	classified := make(map[uuid.UUID]resolver.Assignment)
	if !uc.opts.UseAI || uc.aiService == nil || !uc.aiService.IsAvailable() || len(defaults) == 0 {
		return classified
	}

	catsForAI := make([]*adapter.CategoryForAI, 0, tax.Len())
	for _, c := range tax.All() {
		if tax.HasChildren(c.ID) {
			continue
		}
		catsForAI = append(catsForAI, &adapter.CategoryForAI{
			ID:   c.ID,
			Name: c.Name,
			Path: tax.DisplayName(c.ID),
		})
	}

	txsForAI := make([]*adapter.TransactionForAI, len(defaults))
	for i, tx := range defaults {
		txsForAI[i] = &adapter.TransactionForAI{
			ID:           tx.ID,
			Merchant:     merchant.Key(tx),
			Description:  tx.Description,
			Amount:       decimal.New(tx.Amount, -2).StringFixed(2),
			Date:         tx.Date.Format("2006-01-02"),
			Direction:    string(tx.Direction),
			ProviderCode: tx.ProviderCategory.Code,
		}
	}

	batches := splitIntoBatches(txsForAI)
	if len(batches) > MaxBatches {
		logger.Warn("Transaction count exceeds maximum, classifying first batches only",
			"totalTransactions", len(txsForAI),
			"maxProcessed", MaxBatches*BatchSize,
		)
		batches = batches[:MaxBatches]
	}

	for batchNum, batch := range batches {
		batchLogger := logger.With("batch", batchNum+1, "totalBatches", len(batches), "batchTransactions", len(batch))

		batchCtx, cancel := context.WithTimeout(ctx, uc.opts.BatchTimeout)
		batchStart := time.Now()
		results, err := uc.aiService.Classify(batchCtx, &adapter.AICategorizationRequest{
			WorkspaceID:  workspaceID,
			Transactions: batch,
			Categories:   catsForAI,
		})
		cancel()

		if err != nil {
			batchLogger.Error("Classifier batch failed", "error", err.Error(), "duration", time.Since(batchStart).String())
			uc.processingTracker.SetError(workspaceID, classifyError(err, uc.opts.Now()))
			return classified
		}

		for _, r := range results {
			a, err := resolver.AssignmentForCategory(r.CategoryID, min(max(r.Confidence, 0), 1), entity.MethodAIClassifier, tax)
			if err != nil {
				batchLogger.Warn("Classifier chose an unknown category", "transactionID", r.TransactionID.String())
				continue
			}
			classified[r.TransactionID] = a
		}
		batchLogger.Info("Classifier batch completed", "resultCount", len(results), "duration", time.Since(batchStart).String())
	}

	return classified
}

func splitIntoBatches(transactions []*adapter.TransactionForAI) [][]*adapter.TransactionForAI {
	batches := make([][]*adapter.TransactionForAI, 0, (len(transactions)+BatchSize-1)/BatchSize)
	for i := 0; i < len(transactions); i += BatchSize {
		end := min(i+BatchSize, len(transactions))
		batches = append(batches, transactions[i:end])
	}
	return batches
}
