// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatternRule maps merchant keywords to a target category.
// Targets are category names so the same rule shape serves the built-in
// table and per-workspace overrides.
type PatternRule struct {
	ID                  uuid.UUID
	WorkspaceID         *uuid.UUID // nil for built-in rules
	Name                string
	Priority            int      // Higher priority rules are checked first
	MerchantKeywords    []string // Any keyword contained in the merchant matches
	TargetParent        string
	TargetChild         string
	BaseConfidence      float64
	MinAmount           *int64 // Guard: amount must be >= MinAmount
	MaxAmount           *int64 // Guard: amount must be <= MaxAmount
	CorroborationAmount *int64 // Boost confidence when amount >= CorroborationAmount
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewPatternRule creates a new workspace-scoped PatternRule entity.
func NewPatternRule(
	workspaceID uuid.UUID,
	name string,
	priority int,
	keywords []string,
	targetParent, targetChild string,
	baseConfidence float64,
) *PatternRule {
	now := time.Now().UTC()

	return &PatternRule{
		ID:               uuid.New(),
		WorkspaceID:      &workspaceID,
		Name:             name,
		Priority:         priority,
		MerchantKeywords: keywords,
		TargetParent:     targetParent,
		TargetChild:      targetChild,
		BaseConfidence:   baseConfidence,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ProviderMapping maps a bank-provider category code onto the taxonomy.
type ProviderMapping struct {
	Code         string
	TargetParent string
	TargetChild  string
	Confidence   float64
}
