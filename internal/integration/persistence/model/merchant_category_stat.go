package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// MerchantCategoryStatModel represents the merchant_category_stats table in the database.
type MerchantCategoryStatModel struct {
	WorkspaceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantKey string    `gorm:"type:varchar(255);primaryKey"`
	CategoryID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	HitCount    int       `gorm:"not null;default:0"`
	LastSeenAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the MerchantCategoryStatModel.
func (MerchantCategoryStatModel) TableName() string {
	return "merchant_category_stats"
}

// ToEntity converts a MerchantCategoryStatModel to a domain MerchantCategoryStat entity.
func (m *MerchantCategoryStatModel) ToEntity() *entity.MerchantCategoryStat {
	return &entity.MerchantCategoryStat{
		WorkspaceID: m.WorkspaceID,
		MerchantKey: m.MerchantKey,
		CategoryID:  m.CategoryID,
		HitCount:    m.HitCount,
		LastSeenAt:  m.LastSeenAt,
	}
}
