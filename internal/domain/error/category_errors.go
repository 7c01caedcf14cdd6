// Package error defines domain-specific errors for the bookkeeping engine.
package error

// Category domain errors.
var (
	// ErrCategoryNotFound is returned when a category id does not resolve in the taxonomy.
	ErrCategoryNotFound = newKindError(ErrNotFound, "category not found")

	// ErrCategoryNameExists is returned when a sibling with the same name already exists.
	ErrCategoryNameExists = newKindError(ErrValidation, "category name already exists")

	// ErrCategoryNameTooLong is returned when the category name exceeds the maximum length.
	ErrCategoryNameTooLong = newKindError(ErrValidation, "category name too long")

	// ErrInvalidColorFormat is returned when the category color format is invalid.
	ErrInvalidColorFormat = newKindError(ErrValidation, "invalid color format")

	// ErrCategoryTooDeep is returned when a category would sit below a leaf.
	ErrCategoryTooDeep = newKindError(ErrValidation, "category tree deeper than two levels")

	// ErrCategoryCycle is returned when parent links form a cycle.
	ErrCategoryCycle = newKindError(ErrValidation, "category parent cycle")

	// ErrParentCategoryNotFound is returned when a parent reference does not resolve.
	ErrParentCategoryNotFound = newKindError(ErrValidation, "parent category not found")

	// ErrDuplicateCategoryID is returned when a snapshot contains the same id twice.
	ErrDuplicateCategoryID = newKindError(ErrValidation, "duplicate category id")

	// ErrCategoryHasChildren is returned when deleting a category that still has children.
	ErrCategoryHasChildren = newKindError(ErrValidation, "category has child categories")

	// ErrCategoryNameRequired is returned when a category name is blank.
	ErrCategoryNameRequired = newKindError(ErrValidation, "category name is required")
)

// CategoryErrorCode defines error codes for category errors.
// Format: CAT-XXYYYY where XX is category and YYYY is specific error.
type CategoryErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeCategoryNameTooLong   CategoryErrorCode = "CAT-010001"
	ErrCodeInvalidColorFormat    CategoryErrorCode = "CAT-010002"
	ErrCodeInvalidTaxonomy       CategoryErrorCode = "CAT-010003"
	ErrCodeCategoryNotFound      CategoryErrorCode = "CAT-010004"
	ErrCodeCategoryNameExists    CategoryErrorCode = "CAT-010005"
	ErrCodeCategoryTooDeep       CategoryErrorCode = "CAT-010006"
	ErrCodeCategoryHasChildren   CategoryErrorCode = "CAT-010007"
	ErrCodeMissingCategoryFields CategoryErrorCode = "CAT-010008"
)

// CategoryError represents a category error with code and message.
type CategoryError struct {
	Code    CategoryErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CategoryError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CategoryError) Unwrap() error {
	return e.Err
}

// NewCategoryError creates a new CategoryError with the given code and message.
func NewCategoryError(code CategoryErrorCode, message string, err error) *CategoryError {
	return &CategoryError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
