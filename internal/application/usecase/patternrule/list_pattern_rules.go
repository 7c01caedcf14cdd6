// Package patternrule contains pattern rule use cases.
package patternrule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/rules"
)

// ListPatternRulesInput represents the input for listing pattern rules.
type ListPatternRulesInput struct {
	WorkspaceID     uuid.UUID
	IncludeBuiltins bool
}

// ListPatternRulesOutput represents the output of listing pattern rules.
type ListPatternRulesOutput struct {
	Rules []*RuleOutput
}

// RuleOutput represents a single rule in the output.
type RuleOutput struct {
	ID                  uuid.UUID
	Name                string
	Priority            int
	MerchantKeywords    []string
	TargetParent        string
	TargetChild         string
	BaseConfidence      float64
	MinAmount           *int64
	MaxAmount           *int64
	CorroborationAmount *int64
	IsActive            bool
	IsBuiltin           bool
	CreatedAt           time.Time
}

// ListPatternRulesUseCase lists workspace override rules, optionally followed
// by the built-in table in evaluation order.
type ListPatternRulesUseCase struct {
	ruleRepo adapter.PatternRuleRepository
}

// NewListPatternRulesUseCase creates a new ListPatternRulesUseCase instance.
func NewListPatternRulesUseCase(ruleRepo adapter.PatternRuleRepository) *ListPatternRulesUseCase {
	return &ListPatternRulesUseCase{
		ruleRepo: ruleRepo,
	}
}

// Execute lists the rules.
func (uc *ListPatternRulesUseCase) Execute(ctx context.Context, input ListPatternRulesInput) (*ListPatternRulesOutput, error) {
	workspaceRules, err := uc.ruleRepo.FindByWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pattern rules: %w", err)
	}

	output := &ListPatternRulesOutput{
		Rules: make([]*RuleOutput, 0, len(workspaceRules)),
	}
	for _, r := range workspaceRules {
		output.Rules = append(output.Rules, toOutput(r, false))
	}

	if input.IncludeBuiltins {
		table, err := rules.DefaultTable()
		if err != nil {
			return nil, fmt.Errorf("failed to load default rule table: %w", err)
		}
		builtins := make([]entity.PatternRule, len(table.Rules))
		copy(builtins, table.Rules)
		sortByPriority(builtins)
		for i := range builtins {
			output.Rules = append(output.Rules, toOutput(&builtins[i], true))
		}
	}

	return output, nil
}

func sortByPriority(list []entity.PatternRule) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority > list[j].Priority
	})
}

func toOutput(r *entity.PatternRule, builtin bool) *RuleOutput {
	return &RuleOutput{
		ID:                  r.ID,
		Name:                r.Name,
		Priority:            r.Priority,
		MerchantKeywords:    r.MerchantKeywords,
		TargetParent:        r.TargetParent,
		TargetChild:         r.TargetChild,
		BaseConfidence:      r.BaseConfidence,
		MinAmount:           r.MinAmount,
		MaxAmount:           r.MaxAmount,
		CorroborationAmount: r.CorroborationAmount,
		IsActive:            r.IsActive,
		IsBuiltin:           builtin,
		CreatedAt:           r.CreatedAt,
	}
}
