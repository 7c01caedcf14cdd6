package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// PatternRuleModel represents the pattern_rules table in the database.
// Only workspace overrides are stored; the built-in table ships with the binary.
type PatternRuleModel struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	WorkspaceID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name                string         `gorm:"type:varchar(100);not null"`
	Priority            int            `gorm:"not null;default:0"`
	MerchantKeywords    pq.StringArray `gorm:"type:text[];not null"`
	TargetParent        string         `gorm:"type:varchar(50);not null"`
	TargetChild         string         `gorm:"type:varchar(50)"`
	BaseConfidence      float64        `gorm:"not null"`
	MinAmount           *int64         `gorm:"type:bigint"`
	MaxAmount           *int64         `gorm:"type:bigint"`
	CorroborationAmount *int64         `gorm:"type:bigint"`
	IsActive            bool           `gorm:"not null;default:true"`
	CreatedAt           time.Time      `gorm:"not null"`
	UpdatedAt           time.Time      `gorm:"not null"`
	DeletedAt           gorm.DeletedAt `gorm:"index"` // Soft-delete support
}

// TableName returns the table name for the PatternRuleModel.
func (PatternRuleModel) TableName() string {
	return "pattern_rules"
}

// ToEntity converts a PatternRuleModel to a domain PatternRule entity.
func (m *PatternRuleModel) ToEntity() *entity.PatternRule {
	workspaceID := m.WorkspaceID
	keywords := make([]string, len(m.MerchantKeywords))
	copy(keywords, m.MerchantKeywords)

	return &entity.PatternRule{
		ID:                  m.ID,
		WorkspaceID:         &workspaceID,
		Name:                m.Name,
		Priority:            m.Priority,
		MerchantKeywords:    keywords,
		TargetParent:        m.TargetParent,
		TargetChild:         m.TargetChild,
		BaseConfidence:      m.BaseConfidence,
		MinAmount:           m.MinAmount,
		MaxAmount:           m.MaxAmount,
		CorroborationAmount: m.CorroborationAmount,
		IsActive:            m.IsActive,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// PatternRuleFromEntity creates a PatternRuleModel from a domain PatternRule entity.
func PatternRuleFromEntity(rule *entity.PatternRule) *PatternRuleModel {
	var workspaceID uuid.UUID
	if rule.WorkspaceID != nil {
		workspaceID = *rule.WorkspaceID
	}

	return &PatternRuleModel{
		ID:                  rule.ID,
		WorkspaceID:         workspaceID,
		Name:                rule.Name,
		Priority:            rule.Priority,
		MerchantKeywords:    pq.StringArray(rule.MerchantKeywords),
		TargetParent:        rule.TargetParent,
		TargetChild:         rule.TargetChild,
		BaseConfidence:      rule.BaseConfidence,
		MinAmount:           rule.MinAmount,
		MaxAmount:           rule.MaxAmount,
		CorroborationAmount: rule.CorroborationAmount,
		IsActive:            rule.IsActive,
		CreatedAt:           rule.CreatedAt,
		UpdatedAt:           rule.UpdatedAt,
	}
}
