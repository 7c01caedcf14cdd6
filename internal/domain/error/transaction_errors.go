// Package error defines domain-specific errors for the bookkeeping engine.
package error

// Transaction domain errors.
var (
	// ErrTransactionNotFound is returned when a transaction is not found.
	ErrTransactionNotFound = newKindError(ErrNotFound, "transaction not found")

	// ErrNegativeAmount is returned when a transaction amount is below zero.
	ErrNegativeAmount = newKindError(ErrValidation, "transaction amount must not be negative")

	// ErrMissingTransactionDate is returned when a transaction has no date.
	ErrMissingTransactionDate = newKindError(ErrValidation, "transaction date is required")

	// ErrAICategoryAlreadySet is returned when the AI slot was already written.
	ErrAICategoryAlreadySet = newKindError(ErrValidation, "ai category already set")

	// ErrInvalidPagination is returned when page or limit are out of range.
	ErrInvalidPagination = newKindError(ErrValidation, "invalid pagination parameters")

	// ErrCategorizationInProgress is returned when a run is already active for the workspace.
	ErrCategorizationInProgress = newKindError(ErrValidation, "categorization already in progress")
)

// TransactionErrorCode defines error codes for transaction errors.
// Format: TXN-XXYYYY where XX is category and YYYY is specific error.
type TransactionErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeNegativeAmount         TransactionErrorCode = "TXN-010001"
	ErrCodeMissingTransactionDate TransactionErrorCode = "TXN-010002"
	ErrCodeInvalidPagination      TransactionErrorCode = "TXN-010003"
	ErrCodeInvalidCategoryFilter  TransactionErrorCode = "TXN-010004"
	ErrCodeAICategoryAlreadySet   TransactionErrorCode = "TXN-010005"

	// Resource errors (02XXXX)
	ErrCodeTransactionNotFound TransactionErrorCode = "TXN-020001"
	ErrCodeCorrectionCategory  TransactionErrorCode = "TXN-020002"

	// Conflict errors (03XXXX)
	ErrCodeCategorizationInProgress TransactionErrorCode = "TXN-030001"
)

// TransactionError represents a transaction error with code and message.
type TransactionError struct {
	Code    TransactionErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// NewTransactionError creates a new TransactionError with the given code and message.
func NewTransactionError(code TransactionErrorCode, message string, err error) *TransactionError {
	return &TransactionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
