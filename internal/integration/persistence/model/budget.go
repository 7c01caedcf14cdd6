package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// BudgetGroupModel represents the budget_groups table in the database.
type BudgetGroupModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the BudgetGroupModel.
func (BudgetGroupModel) TableName() string {
	return "budget_groups"
}

// ToEntity converts a BudgetGroupModel to a domain BudgetGroup entity.
func (m *BudgetGroupModel) ToEntity() entity.BudgetGroup {
	return entity.BudgetGroup{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		Name:        m.Name,
	}
}

// BudgetLineModel represents the budget_lines table in the database.
// Spent and Remaining are derived and rewritten on every recompute.
type BudgetLineModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null;index"`
	GroupID     *uuid.UUID `gorm:"type:uuid;index"`
	CategoryID  uuid.UUID  `gorm:"type:uuid;not null"`
	Budgeted    int64      `gorm:"type:bigint;not null"`
	Spent       int64      `gorm:"type:bigint;not null;default:0"`
	Remaining   int64      `gorm:"type:bigint;not null;default:0"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the BudgetLineModel.
func (BudgetLineModel) TableName() string {
	return "budget_lines"
}

// ToEntity converts a BudgetLineModel to a domain BudgetLine entity.
func (m *BudgetLineModel) ToEntity() entity.BudgetLine {
	return entity.BudgetLine{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		GroupID:     m.GroupID,
		CategoryID:  m.CategoryID,
		Budgeted:    m.Budgeted,
		Spent:       m.Spent,
		Remaining:   m.Remaining,
		UpdatedAt:   m.UpdatedAt,
	}
}

// BudgetLineFromEntity creates a BudgetLineModel from a domain BudgetLine entity.
func BudgetLineFromEntity(line entity.BudgetLine) *BudgetLineModel {
	return &BudgetLineModel{
		ID:          line.ID,
		WorkspaceID: line.WorkspaceID,
		GroupID:     line.GroupID,
		CategoryID:  line.CategoryID,
		Budgeted:    line.Budgeted,
		Spent:       line.Spent,
		Remaining:   line.Remaining,
		CreatedAt:   line.UpdatedAt,
		UpdatedAt:   line.UpdatedAt,
	}
}

// BudgetOverrideModel represents the budget_overrides table in the database.
// A transaction has at most one override.
type BudgetOverrideModel struct {
	TransactionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	BudgetLineID  uuid.UUID `gorm:"type:uuid;not null;index"`
	WorkspaceID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the BudgetOverrideModel.
func (BudgetOverrideModel) TableName() string {
	return "budget_overrides"
}

// ToEntity converts a BudgetOverrideModel to a domain BudgetOverride entity.
func (m *BudgetOverrideModel) ToEntity() entity.BudgetOverride {
	return entity.BudgetOverride{
		TransactionID: m.TransactionID,
		BudgetLineID:  m.BudgetLineID,
		WorkspaceID:   m.WorkspaceID,
		CreatedAt:     m.CreatedAt,
	}
}

// BudgetOverrideFromEntity creates a BudgetOverrideModel from a domain BudgetOverride entity.
func BudgetOverrideFromEntity(override *entity.BudgetOverride) *BudgetOverrideModel {
	return &BudgetOverrideModel{
		TransactionID: override.TransactionID,
		BudgetLineID:  override.BudgetLineID,
		WorkspaceID:   override.WorkspaceID,
		CreatedAt:     override.CreatedAt,
	}
}
