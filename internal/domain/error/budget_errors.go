// Package error defines domain-specific errors for the bookkeeping engine.
package error

// Budget domain errors.
var (
	// ErrBudgetLineNotFound is returned when a budget line is not found.
	ErrBudgetLineNotFound = newKindError(ErrNotFound, "budget line not found")

	// ErrNegativeBudget is returned when a line's budgeted amount is below zero.
	ErrNegativeBudget = newKindError(ErrValidation, "budgeted amount must not be negative")

	// ErrInvalidBudgetPeriod is returned when a period ends before it starts.
	ErrInvalidBudgetPeriod = newKindError(ErrValidation, "budget period end is before start")

	// ErrBudgetOverrideNotFound is returned when clearing an override that does not exist.
	ErrBudgetOverrideNotFound = newKindError(ErrNotFound, "budget override not found")
)

// BudgetErrorCode defines error codes for budget errors.
// Format: BGT-XXYYYY where XX is category and YYYY is specific error.
type BudgetErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeNegativeBudget      BudgetErrorCode = "BGT-010001"
	ErrCodeInvalidBudgetPeriod BudgetErrorCode = "BGT-010002"

	// Resource errors (02XXXX)
	ErrCodeBudgetLineNotFound     BudgetErrorCode = "BGT-020001"
	ErrCodeBudgetOverrideNotFound BudgetErrorCode = "BGT-020002"
)

// BudgetError represents a budget error with code and message.
type BudgetError struct {
	Code    BudgetErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BudgetError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *BudgetError) Unwrap() error {
	return e.Err
}

// NewBudgetError creates a new BudgetError with the given code and message.
func NewBudgetError(code BudgetErrorCode, message string, err error) *BudgetError {
	return &BudgetError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
