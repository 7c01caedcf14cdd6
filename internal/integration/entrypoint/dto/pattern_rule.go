package dto

import (
	"time"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/patternrule"
)

// CreatePatternRuleRequest represents the request body for override rule creation.
// Amounts are in minor units.
type CreatePatternRuleRequest struct {
	Name                string   `json:"name,omitempty" binding:"omitempty,max=100"`
	Keywords            []string `json:"keywords" binding:"required,min=1"`
	TargetParent        string   `json:"target_parent" binding:"required"`
	TargetChild         string   `json:"target_child" binding:"required"`
	BaseConfidence      float64  `json:"base_confidence"`
	Priority            *int     `json:"priority,omitempty"`
	MinAmount           *int64   `json:"min_amount,omitempty"`
	MaxAmount           *int64   `json:"max_amount,omitempty"`
	CorroborationAmount *int64   `json:"corroboration_amount,omitempty"`
}

// TestPatternRequest represents the request body for a dry run of the matcher.
type TestPatternRequest struct {
	Merchant     string `json:"merchant" binding:"required"`
	Amount       int64  `json:"amount"`
	ProviderCode string `json:"provider_code,omitempty"`
}

// PatternRuleResponse represents a single rule in API responses.
type PatternRuleResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Priority            int       `json:"priority"`
	Keywords            []string  `json:"keywords"`
	TargetParent        string    `json:"target_parent"`
	TargetChild         string    `json:"target_child"`
	BaseConfidence      float64   `json:"base_confidence"`
	MinAmount           *string   `json:"min_amount,omitempty"`
	MaxAmount           *string   `json:"max_amount,omitempty"`
	CorroborationAmount *string   `json:"corroboration_amount,omitempty"`
	IsActive            bool      `json:"is_active"`
	IsBuiltin           bool      `json:"is_builtin"`
	CreatedAt           time.Time `json:"created_at"`
}

// PatternRuleListResponse represents the response for listing rules.
type PatternRuleListResponse struct {
	Rules []PatternRuleResponse `json:"rules"`
}

// TestPatternResponse represents the matcher's answer for a dry run.
type TestPatternResponse struct {
	NormalizedMerchant string  `json:"normalized_merchant"`
	Parent             string  `json:"parent"`
	Child              string  `json:"child"`
	Confidence         float64 `json:"confidence"`
	Method             string  `json:"method"`
	RuleID             *string `json:"rule_id,omitempty"`
	RuleName           string  `json:"rule_name,omitempty"`
	CategoryID         *string `json:"category_id"`
	CategoryPath       string  `json:"category_path,omitempty"`
}

// ToPatternRuleResponse converts a RuleOutput to a PatternRuleResponse DTO.
func ToPatternRuleResponse(output *patternrule.RuleOutput) PatternRuleResponse {
	return PatternRuleResponse{
		ID:                  output.ID.String(),
		Name:                output.Name,
		Priority:            output.Priority,
		Keywords:            output.MerchantKeywords,
		TargetParent:        output.TargetParent,
		TargetChild:         output.TargetChild,
		BaseConfidence:      output.BaseConfidence,
		MinAmount:           formatOptionalMinorUnits(output.MinAmount),
		MaxAmount:           formatOptionalMinorUnits(output.MaxAmount),
		CorroborationAmount: formatOptionalMinorUnits(output.CorroborationAmount),
		IsActive:            output.IsActive,
		IsBuiltin:           output.IsBuiltin,
		CreatedAt:           output.CreatedAt,
	}
}

// ToPatternRuleListResponse converts a list of RuleOutput to a PatternRuleListResponse.
func ToPatternRuleListResponse(outputs []*patternrule.RuleOutput) PatternRuleListResponse {
	rules := make([]PatternRuleResponse, len(outputs))
	for i, output := range outputs {
		rules[i] = ToPatternRuleResponse(output)
	}
	return PatternRuleListResponse{
		Rules: rules,
	}
}

// ToTestPatternResponse converts a TestPatternOutput to a TestPatternResponse DTO.
func ToTestPatternResponse(output *patternrule.TestPatternOutput) TestPatternResponse {
	return TestPatternResponse{
		NormalizedMerchant: output.NormalizedMerchant,
		Parent:             output.Parent,
		Child:              output.Child,
		Confidence:         output.Confidence,
		Method:             string(output.Method),
		RuleID:             optionalID(output.RuleID),
		RuleName:           output.RuleName,
		CategoryID:         optionalID(output.CategoryID),
		CategoryPath:       output.CategoryPath,
	}
}
