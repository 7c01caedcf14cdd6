package dto

import (
	"time"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/categorization"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/transaction"
)

// CorrectCategoryRequest represents the request body for a category correction.
// An empty or missing category_id clears the user's choice.
type CorrectCategoryRequest struct {
	CategoryID *string `json:"category_id"`
}

// TransactionCategoryResponse represents the category a transaction displays.
type TransactionCategoryResponse struct {
	ID          *string `json:"id"`
	PrimaryID   *string `json:"primary_id,omitempty"`
	SecondaryID *string `json:"secondary_id,omitempty"`
	Name        string  `json:"name"`
	Source      string  `json:"source"`
	Confidence  float64 `json:"confidence,omitempty"`
	Method      string  `json:"method,omitempty"`
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	ID           string                      `json:"id"`
	Date         string                      `json:"date"`
	Amount       string                      `json:"amount"`
	AmountMinor  int64                       `json:"amount_minor"`
	Direction    string                      `json:"direction"`
	Status       string                      `json:"status"`
	MerchantName *string                     `json:"merchant_name"`
	MerchantKey  string                      `json:"merchant_key"`
	Description  string                      `json:"description"`
	Category     TransactionCategoryResponse `json:"category"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// TransactionTotalsResponse represents totals over every matching transaction.
type TransactionTotalsResponse struct {
	InflowTotal  string `json:"inflow_total"`
	OutflowTotal string `json:"outflow_total"`
	NetTotal     string `json:"net_total"`
}

// TransactionListResponse represents the response for listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse     `json:"transactions"`
	Pagination   PaginationResponse        `json:"pagination"`
	Totals       TransactionTotalsResponse `json:"totals"`
}

// CorrectCategoryResponse represents the category a transaction displays after a correction.
type CorrectCategoryResponse struct {
	TransactionID string  `json:"transaction_id"`
	PrimaryID     *string `json:"primary_id"`
	SecondaryID   *string `json:"secondary_id"`
	Source        string  `json:"source"`
	DisplayName   string  `json:"display_name"`
	Changed       bool    `json:"changed"`
}

// ToTransactionResponse converts a TransactionOutput to a TransactionResponse DTO.
func ToTransactionResponse(output *transaction.TransactionOutput) TransactionResponse {
	cat := output.Category
	return TransactionResponse{
		ID:           output.ID.String(),
		Date:         output.Date.Format("2006-01-02"),
		Amount:       formatMinorUnits(output.Amount),
		AmountMinor:  output.Amount,
		Direction:    string(output.Direction),
		Status:       string(output.Status),
		MerchantName: output.MerchantName,
		MerchantKey:  output.MerchantKey,
		Description:  output.Description,
		Category: TransactionCategoryResponse{
			ID:          optionalID(cat.ID),
			PrimaryID:   optionalID(cat.PrimaryID),
			SecondaryID: optionalID(cat.SecondaryID),
			Name:        cat.Name,
			Source:      string(cat.Source),
			Confidence:  cat.Confidence,
			Method:      string(cat.Method),
		},
		CreatedAt: output.CreatedAt,
		UpdatedAt: output.UpdatedAt,
	}
}

// ToTransactionListResponse converts a ListTransactionsOutput to a TransactionListResponse DTO.
func ToTransactionListResponse(output *transaction.ListTransactionsOutput) TransactionListResponse {
	transactions := make([]TransactionResponse, len(output.Transactions))
	for i, tx := range output.Transactions {
		transactions[i] = ToTransactionResponse(tx)
	}
	return TransactionListResponse{
		Transactions: transactions,
		Pagination: PaginationResponse{
			Page:       output.Pagination.Page,
			Limit:      output.Pagination.Limit,
			Total:      output.Pagination.Total,
			TotalPages: output.Pagination.TotalPages,
		},
		Totals: TransactionTotalsResponse{
			InflowTotal:  output.Totals.InflowTotal.StringFixed(2),
			OutflowTotal: output.Totals.OutflowTotal.StringFixed(2),
			NetTotal:     output.Totals.NetTotal.StringFixed(2),
		},
	}
}

// ToCorrectCategoryResponse converts an ApplyCorrectionOutput to a CorrectCategoryResponse DTO.
func ToCorrectCategoryResponse(output *categorization.ApplyCorrectionOutput) CorrectCategoryResponse {
	return CorrectCategoryResponse{
		TransactionID: output.TransactionID.String(),
		PrimaryID:     optionalID(output.PrimaryID),
		SecondaryID:   optionalID(output.SecondaryID),
		Source:        string(output.Source),
		DisplayName:   output.DisplayName,
		Changed:       output.Changed,
	}
}
