// Package patternrule contains pattern rule use cases.
package patternrule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
)

// DeletePatternRuleInput represents the input for pattern rule deletion.
type DeletePatternRuleInput struct {
	WorkspaceID uuid.UUID
	RuleID      uuid.UUID
}

// DeletePatternRuleOutput represents the output of pattern rule deletion.
type DeletePatternRuleOutput struct {
	Success bool
}

// DeletePatternRuleUseCase handles pattern rule deletion.
type DeletePatternRuleUseCase struct {
	ruleRepo adapter.PatternRuleRepository
}

// NewDeletePatternRuleUseCase creates a new DeletePatternRuleUseCase instance.
func NewDeletePatternRuleUseCase(ruleRepo adapter.PatternRuleRepository) *DeletePatternRuleUseCase {
	return &DeletePatternRuleUseCase{
		ruleRepo: ruleRepo,
	}
}

// Execute performs the pattern rule deletion.
func (uc *DeletePatternRuleUseCase) Execute(ctx context.Context, input DeletePatternRuleInput) (*DeletePatternRuleOutput, error) {
	if _, err := uc.ruleRepo.FindByID(ctx, input.WorkspaceID, input.RuleID); err != nil {
		if errors.Is(err, domainerror.ErrPatternRuleNotFound) {
			return nil, domainerror.NewPatternRuleError(
				domainerror.ErrCodePatternRuleNotFound,
				"pattern rule not found",
				domainerror.ErrPatternRuleNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find pattern rule: %w", err)
	}

	if err := uc.ruleRepo.Delete(ctx, input.WorkspaceID, input.RuleID); err != nil {
		return nil, fmt.Errorf("failed to delete pattern rule: %w", err)
	}

	return &DeletePatternRuleOutput{
		Success: true,
	}, nil
}
