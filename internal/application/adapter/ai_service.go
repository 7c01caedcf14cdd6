// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
)

// AICategorizationRequest asks the classifier to place transactions the rule
// table could only default.
type AICategorizationRequest struct {
	WorkspaceID  uuid.UUID
	Transactions []*TransactionForAI
	Categories   []*CategoryForAI
}

// TransactionForAI represents transaction data for AI processing.
type TransactionForAI struct {
	ID           uuid.UUID
	Merchant     string
	Description  string
	Amount       string
	Date         string
	Direction    string
	ProviderCode string
}

// CategoryForAI represents a categorization target offered to the classifier.
type CategoryForAI struct {
	ID   uuid.UUID
	Name string
	Path string
}

// AICategorizationResult is the classifier's choice for one transaction.
type AICategorizationResult struct {
	TransactionID uuid.UUID
	CategoryID    uuid.UUID
	Confidence    float64
	Reasoning     string
}

// AICategorizationService defines the interface for AI categorization operations.
type AICategorizationService interface {
	// Classify returns a category choice for each transaction it could place.
	Classify(ctx context.Context, request *AICategorizationRequest) ([]*AICategorizationResult, error)

	// IsAvailable checks if the AI service is available and properly configured.
	IsAvailable() bool
}
