package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// TransactionModel represents the transactions table in the database.
// Amounts are stored in minor currency units.
type TransactionModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	WorkspaceID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Date         time.Time      `gorm:"type:date;not null;index"`
	Amount       int64          `gorm:"type:bigint;not null"`
	Direction    string         `gorm:"type:varchar(10);not null;index"`
	Status       string         `gorm:"type:varchar(10);not null;default:'posted'"`
	MerchantName *string        `gorm:"type:varchar(255)"`
	Description  string         `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    gorm.DeletedAt `gorm:"index"` // Soft-delete support

	// Provider signal, written by ingestion only
	ProviderCategoryCode       string  `gorm:"type:varchar(100)"`
	ProviderCategoryConfidence float64 `gorm:"default:0"`

	// AI slot
	AIPrimaryCategoryID   *uuid.UUID `gorm:"column:ai_primary_category_id;type:uuid;index"`
	AISecondaryCategoryID *uuid.UUID `gorm:"column:ai_secondary_category_id;type:uuid"`
	AIConfidence          float64    `gorm:"column:ai_confidence;default:0"`
	AIMethod              string     `gorm:"column:ai_method;type:varchar(20)"`
	AICategorizedAt       *time.Time `gorm:"column:ai_categorized_at;type:timestamp"`

	// User slot
	UserPrimaryCategoryID   *uuid.UUID `gorm:"type:uuid;index"`
	UserSecondaryCategoryID *uuid.UUID `gorm:"type:uuid"`
	UserCategorizedAt       *time.Time `gorm:"type:timestamp"`
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:           m.ID,
		WorkspaceID:  m.WorkspaceID,
		Date:         m.Date,
		Amount:       m.Amount,
		Direction:    entity.Direction(m.Direction),
		Status:       entity.TransactionStatus(m.Status),
		MerchantName: m.MerchantName,
		Description:  m.Description,
		ProviderCategory: entity.ProviderCategory{
			Code:       m.ProviderCategoryCode,
			Confidence: m.ProviderCategoryConfidence,
		},
		AICategory: entity.AICategory{
			PrimaryID:     m.AIPrimaryCategoryID,
			SecondaryID:   m.AISecondaryCategoryID,
			Confidence:    m.AIConfidence,
			Method:        entity.CategorizationMethod(m.AIMethod),
			CategorizedAt: m.AICategorizedAt,
		},
		UserCategory: entity.UserCategory{
			PrimaryID:   m.UserPrimaryCategoryID,
			SecondaryID: m.UserSecondaryCategoryID,
			UpdatedAt:   m.UserCategorizedAt,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(transaction *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:                         transaction.ID,
		WorkspaceID:                transaction.WorkspaceID,
		Date:                       transaction.Date,
		Amount:                     transaction.Amount,
		Direction:                  string(transaction.Direction),
		Status:                     string(transaction.Status),
		MerchantName:               transaction.MerchantName,
		Description:                transaction.Description,
		CreatedAt:                  transaction.CreatedAt,
		UpdatedAt:                  transaction.UpdatedAt,
		ProviderCategoryCode:       transaction.ProviderCategory.Code,
		ProviderCategoryConfidence: transaction.ProviderCategory.Confidence,
		AIPrimaryCategoryID:        transaction.AICategory.PrimaryID,
		AISecondaryCategoryID:      transaction.AICategory.SecondaryID,
		AIConfidence:               transaction.AICategory.Confidence,
		AIMethod:                   string(transaction.AICategory.Method),
		AICategorizedAt:            transaction.AICategory.CategorizedAt,
		UserPrimaryCategoryID:      transaction.UserCategory.PrimaryID,
		UserSecondaryCategoryID:    transaction.UserCategory.SecondaryID,
		UserCategorizedAt:          transaction.UserCategory.UpdatedAt,
	}
}
