package patternrule

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
	"github.com/finance-tracker/bookkeeping/internal/domain/rules"
)

// TestPatternInput is a merchant signal to run through the workspace's rules.
type TestPatternInput struct {
	WorkspaceID  uuid.UUID
	Merchant     string
	Amount       int64
	ProviderCode string
}

// TestPatternOutput is the matcher's answer for the input.
type TestPatternOutput struct {
	NormalizedMerchant string
	Parent             string
	Child              string
	Confidence         float64
	Method             entity.CategorizationMethod
	RuleID             *uuid.UUID
	RuleName           string
	CategoryID         *uuid.UUID
	CategoryPath       string
}

// TestPatternUseCase runs the full matcher without writing anything.
type TestPatternUseCase struct {
	rulesLoader *RuleSetLoader
	taxLoader   *category.TaxonomyLoader
}

// NewTestPatternUseCase creates a new TestPatternUseCase instance.
func NewTestPatternUseCase(rulesLoader *RuleSetLoader, taxLoader *category.TaxonomyLoader) *TestPatternUseCase {
	return &TestPatternUseCase{
		rulesLoader: rulesLoader,
		taxLoader:   taxLoader,
	}
}

// Execute matches the input. Target names the workspace lacks leave
// CategoryID empty rather than failing.
func (uc *TestPatternUseCase) Execute(ctx context.Context, input TestPatternInput) (*TestPatternOutput, error) {
	rs, err := uc.rulesLoader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	key := merchant.Normalize(input.Merchant)
	m := rs.Match(rules.Input{
		Merchant:     key,
		Amount:       input.Amount,
		ProviderCode: input.ProviderCode,
	})

	output := &TestPatternOutput{
		NormalizedMerchant: key,
		Parent:             m.Parent,
		Child:              m.Child,
		Confidence:         m.Confidence,
		Method:             m.Method,
		RuleName:           m.RuleName,
	}
	if m.RuleID != uuid.Nil {
		id := m.RuleID
		output.RuleID = &id
	}

	tax, err := uc.taxLoader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if primary, secondary, err := tax.FindPath(m.Parent, m.Child); err == nil {
		id := primary
		if secondary != nil {
			id = *secondary
		}
		output.CategoryID = &id
		output.CategoryPath = tax.DisplayName(id)
	}

	return output, nil
}
