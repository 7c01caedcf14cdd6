// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// LearningSignal records that a user corrected a merchant to a category.
// Signals are advisory input for improving rules and are delivered best-effort.
type LearningSignal struct {
	WorkspaceID        uuid.UUID
	TransactionID      uuid.UUID
	MerchantKey        string
	CategoryID         uuid.UUID
	PreviousCategoryID *uuid.UUID
	OccurredAt         time.Time
}

// MerchantCategoryStat aggregates learning signals per merchant and category.
type MerchantCategoryStat struct {
	WorkspaceID uuid.UUID
	MerchantKey string
	CategoryID  uuid.UUID
	HitCount    int
	LastSeenAt  time.Time
}
