// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// PaginationResponse represents pagination info in list responses.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// formatMinorUnits renders an amount held in minor units with two decimals.
func formatMinorUnits(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// formatOptionalMinorUnits is formatMinorUnits for optional amounts.
func formatOptionalMinorUnits(amount *int64) *string {
	if amount == nil {
		return nil
	}
	s := formatMinorUnits(*amount)
	return &s
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
