// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Direction represents the money flow of a transaction.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// TransactionStatus represents the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPosted  TransactionStatus = "posted"
)

// CategorizationMethod records how an AI-slot category was produced.
type CategorizationMethod string

const (
	MethodMerchantRule     CategorizationMethod = "merchant_rule"
	MethodProviderFallback CategorizationMethod = "provider_fallback"
	MethodDefault          CategorizationMethod = "default"
	MethodAIClassifier     CategorizationMethod = "ai_classifier"
	MethodLearned          CategorizationMethod = "learned"
)

// ProviderCategory is the raw category code supplied by the bank-data provider.
// It feeds the rule matcher but is never displayed.
type ProviderCategory struct {
	Code       string
	Confidence float64
}

// AICategory is the machine-assigned categorization slot.
type AICategory struct {
	PrimaryID     *uuid.UUID
	SecondaryID   *uuid.UUID
	Confidence    float64
	Method        CategorizationMethod
	CategorizedAt *time.Time
}

// IsSet reports whether the slot holds a category.
func (c AICategory) IsSet() bool {
	return c.PrimaryID != nil
}

// UserCategory is the human-assigned categorization slot. It always wins.
type UserCategory struct {
	PrimaryID   *uuid.UUID
	SecondaryID *uuid.UUID
	UpdatedAt   *time.Time
}

// IsSet reports whether the slot holds a category.
func (c UserCategory) IsSet() bool {
	return c.PrimaryID != nil
}

// Transaction represents a bank transaction within a workspace.
// Amount is a non-negative magnitude in minor currency units; Direction carries the sign.
type Transaction struct {
	ID               uuid.UUID
	WorkspaceID      uuid.UUID
	Date             time.Time
	Amount           int64
	Direction        Direction
	Status           TransactionStatus
	MerchantName     *string
	Description      string
	ProviderCategory ProviderCategory
	AICategory       AICategory
	UserCategory     UserCategory
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTransaction creates a new posted Transaction entity.
func NewTransaction(
	workspaceID uuid.UUID,
	date time.Time,
	amount int64,
	direction Direction,
	merchantName *string,
	description string,
) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		Date:         date,
		Amount:       amount,
		Direction:    direction,
		Status:       TransactionStatusPosted,
		MerchantName: merchantName,
		Description:  description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsPostedOutflow reports whether the transaction counts as settled spending.
func (t *Transaction) IsPostedOutflow() bool {
	return t.Status == TransactionStatusPosted && t.Direction == DirectionOutflow
}

// Clone returns a deep copy so callers can derive new states without aliasing pointers.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.MerchantName = cloneString(t.MerchantName)
	c.AICategory.PrimaryID = cloneUUID(t.AICategory.PrimaryID)
	c.AICategory.SecondaryID = cloneUUID(t.AICategory.SecondaryID)
	c.AICategory.CategorizedAt = cloneTime(t.AICategory.CategorizedAt)
	c.UserCategory.PrimaryID = cloneUUID(t.UserCategory.PrimaryID)
	c.UserCategory.SecondaryID = cloneUUID(t.UserCategory.SecondaryID)
	c.UserCategory.UpdatedAt = cloneTime(t.UserCategory.UpdatedAt)
	return &c
}

// TransactionListResult represents the result of listing transactions.
type TransactionListResult struct {
	Transactions []*Transaction
	Total        int64
	Page         int
	Limit        int
	TotalPages   int
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
