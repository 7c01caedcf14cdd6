package categorization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/resolver"
)

// LearningTimeout bounds delivery of a single learning signal.
const LearningTimeout = 5 * time.Second

// ApplyCorrectionInput represents the input for correcting a transaction's category.
// A nil CategoryID clears the user category.
type ApplyCorrectionInput struct {
	WorkspaceID   uuid.UUID
	TransactionID uuid.UUID
	CategoryID    *uuid.UUID
}

// ApplyCorrectionOutput represents the category a transaction displays after a correction.
type ApplyCorrectionOutput struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	PrimaryID     *uuid.UUID      `json:"primary_id,omitempty"`
	SecondaryID   *uuid.UUID      `json:"secondary_id,omitempty"`
	Source        resolver.Source `json:"source"`
	DisplayName   string          `json:"display_name"`
	Changed       bool            `json:"changed"`
}

// ApplyCorrectionUseCase writes a user's category choice to a transaction and
// hands the resulting merchant signal to the learning sink.
type ApplyCorrectionUseCase struct {
	transactionRepo adapter.TransactionRepository
	taxLoader       *category.TaxonomyLoader
	learningSink    adapter.LearningSink
	notifyTimeout   time.Duration
	now             func() time.Time
}

// NewApplyCorrectionUseCase creates a new ApplyCorrectionUseCase instance.
// learningSink may be nil.
func NewApplyCorrectionUseCase(
	transactionRepo adapter.TransactionRepository,
	taxLoader *category.TaxonomyLoader,
	learningSink adapter.LearningSink,
) *ApplyCorrectionUseCase {
	return &ApplyCorrectionUseCase{
		transactionRepo: transactionRepo,
		taxLoader:       taxLoader,
		learningSink:    learningSink,
		notifyTimeout:   LearningTimeout,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithNotifyTimeout bounds each learning sink notification. Non-positive
// values keep LearningTimeout.
func (uc *ApplyCorrectionUseCase) WithNotifyTimeout(timeout time.Duration) *ApplyCorrectionUseCase {
	if timeout > 0 {
		uc.notifyTimeout = timeout
	}
	return uc
}

// Execute applies the correction. Repeating a correction is a no-op.
func (uc *ApplyCorrectionUseCase) Execute(ctx context.Context, input ApplyCorrectionInput) (*ApplyCorrectionOutput, error) {
	tx, err := uc.transactionRepo.FindByID(ctx, input.WorkspaceID, input.TransactionID)
	if err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeTransactionNotFound,
				"transaction not found",
				domainerror.ErrTransactionNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	tax, err := uc.taxLoader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	chosen := uuid.Nil
	if input.CategoryID != nil {
		chosen = *input.CategoryID
	}

	correction, err := resolver.ApplyUserCorrection(tx, chosen, tax, uc.now())
	if err != nil {
		return nil, err
	}

	if correction.Changed {
		if err := uc.transactionRepo.UpdateUserCategory(ctx, correction.Transaction); err != nil {
			return nil, fmt.Errorf("failed to update user category: %w", err)
		}
		slog.Default().Info("Transaction category corrected",
			"workspaceID", input.WorkspaceID.String(),
			"transactionID", input.TransactionID.String(),
		)
	}

	if correction.Signal != nil && uc.learningSink != nil {
		signal := *correction.Signal
		go func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Default().Warn("Learning sink panicked",
						"transactionID", signal.TransactionID.String(),
						"panic", fmt.Sprint(r),
					)
				}
			}()
			notifyCtx, cancel := context.WithTimeout(context.Background(), uc.notifyTimeout)
			defer cancel()
			uc.learningSink.Notify(notifyCtx, signal)
		}()
	}

	resolved := resolver.Resolve(correction.Transaction)
	return &ApplyCorrectionOutput{
		TransactionID: correction.Transaction.ID,
		PrimaryID:     resolved.PrimaryID,
		SecondaryID:   resolved.SecondaryID,
		Source:        resolved.Source,
		DisplayName:   resolver.DisplayName(resolved, tax),
		Changed:       correction.Changed,
	}, nil
}
