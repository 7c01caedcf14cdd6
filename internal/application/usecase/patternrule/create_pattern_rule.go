// Package patternrule contains pattern rule use cases.
package patternrule

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// PriorityStep separates a new rule from the current highest priority.
const PriorityStep = 10

// CreatePatternRuleInput represents the input for pattern rule creation.
type CreatePatternRuleInput struct {
	WorkspaceID         uuid.UUID
	Name                string
	Keywords            []string
	TargetParent        string
	TargetChild         string
	BaseConfidence      float64
	Priority            *int // Optional, defaults to the highest priority + PriorityStep
	MinAmount           *int64
	MaxAmount           *int64
	CorroborationAmount *int64
}

// CreatePatternRuleOutput represents the output of pattern rule creation.
type CreatePatternRuleOutput struct {
	Rule *RuleOutput
}

// CreatePatternRuleUseCase handles workspace override rule creation.
type CreatePatternRuleUseCase struct {
	ruleRepo adapter.PatternRuleRepository
	loader   *category.TaxonomyLoader
}

// NewCreatePatternRuleUseCase creates a new CreatePatternRuleUseCase instance.
func NewCreatePatternRuleUseCase(ruleRepo adapter.PatternRuleRepository, loader *category.TaxonomyLoader) *CreatePatternRuleUseCase {
	return &CreatePatternRuleUseCase{
		ruleRepo: ruleRepo,
		loader:   loader,
	}
}

// Execute validates the rule against the workspace's layer and taxonomy, then stores it.
func (uc *CreatePatternRuleUseCase) Execute(ctx context.Context, input CreatePatternRuleInput) (*CreatePatternRuleOutput, error) {
	existing, err := uc.ruleRepo.FindByWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pattern rules: %w", err)
	}

	priority := PriorityStep
	if input.Priority != nil {
		priority = *input.Priority
	} else {
		for _, r := range existing {
			priority = max(priority, r.Priority+PriorityStep)
		}
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.Join(input.Keywords, ", ")
	}

	rule := entity.NewPatternRule(
		input.WorkspaceID,
		name,
		priority,
		input.Keywords,
		strings.TrimSpace(input.TargetParent),
		strings.TrimSpace(input.TargetChild),
		input.BaseConfidence,
	)
	rule.MinAmount = input.MinAmount
	rule.MaxAmount = input.MaxAmount
	rule.CorroborationAmount = input.CorroborationAmount

	layerRules := append(existing, rule)
	if _, err := layer(layerRules); err != nil {
		return nil, err
	}

	tax, err := uc.loader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if _, _, err := tax.FindPath(rule.TargetParent, rule.TargetChild); err != nil {
		return nil, err
	}

	if err := uc.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create pattern rule: %w", err)
	}

	return &CreatePatternRuleOutput{
		Rule: toOutput(rule, false),
	}, nil
}
