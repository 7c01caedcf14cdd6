// Package patternrule contains pattern rule use cases.
package patternrule

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/rules"
)

// RuleSetLoader layers a workspace's active override rules on top of the
// built-in rule table.
type RuleSetLoader struct {
	ruleRepo adapter.PatternRuleRepository
}

// NewRuleSetLoader creates a new RuleSetLoader.
func NewRuleSetLoader(ruleRepo adapter.PatternRuleRepository) *RuleSetLoader {
	return &RuleSetLoader{
		ruleRepo: ruleRepo,
	}
}

// Load returns the rule set a workspace's transactions are matched with.
func (l *RuleSetLoader) Load(ctx context.Context, workspaceID uuid.UUID) (*rules.RuleSet, error) {
	overrides, err := l.ruleRepo.FindActiveByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pattern rules: %w", err)
	}
	return layer(overrides)
}

func layer(overrides []*entity.PatternRule) (*rules.RuleSet, error) {
	table, err := rules.DefaultTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load default rule table: %w", err)
	}

	values := make([]entity.PatternRule, 0, len(overrides))
	for _, r := range overrides {
		values = append(values, *r)
	}
	return table.RuleSet.WithOverrides(values)
}
