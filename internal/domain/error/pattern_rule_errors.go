// Package error defines domain-specific errors for the bookkeeping engine.
package error

// Pattern rule domain errors.
var (
	// ErrPatternRuleNotFound is returned when a pattern rule is not found.
	ErrPatternRuleNotFound = newKindError(ErrNotFound, "pattern rule not found")

	// ErrRuleMissingKeywords is returned when a rule has no merchant keywords.
	ErrRuleMissingKeywords = newKindError(ErrValidation, "pattern rule has no merchant keywords")

	// ErrRuleMissingTarget is returned when a rule has no target parent category.
	ErrRuleMissingTarget = newKindError(ErrValidation, "pattern rule has no target category")

	// ErrRuleInvalidConfidence is returned when a confidence is outside (0, 1].
	ErrRuleInvalidConfidence = newKindError(ErrValidation, "pattern rule confidence out of range")

	// ErrRuleInvalidAmountRange is returned when the amount guard minimum exceeds the maximum.
	ErrRuleInvalidAmountRange = newKindError(ErrValidation, "pattern rule amount range is inverted")

	// ErrRuleKeywordTooLong is returned when a keyword exceeds the maximum length.
	ErrRuleKeywordTooLong = newKindError(ErrValidation, "pattern rule keyword too long")

	// ErrProviderMappingInvalid is returned when a provider mapping lacks a code or target.
	ErrProviderMappingInvalid = newKindError(ErrValidation, "provider mapping is invalid")

	// ErrDuplicateRulePriority is returned when two rules in one layer share a priority.
	ErrDuplicateRulePriority = newKindError(ErrAmbiguousMatch, "two pattern rules share a priority")

	// ErrRuleTableInvalid is returned when the built-in rule table cannot be parsed.
	ErrRuleTableInvalid = newKindError(ErrValidation, "rule table is invalid")
)

// PatternRuleErrorCode defines error codes for pattern rule errors.
// Format: PRL-XXYYYY where XX is category and YYYY is specific error.
type PatternRuleErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeRuleMissingKeywords    PatternRuleErrorCode = "PRL-010001"
	ErrCodeRuleMissingTarget      PatternRuleErrorCode = "PRL-010002"
	ErrCodeRuleInvalidConfidence  PatternRuleErrorCode = "PRL-010003"
	ErrCodeRuleInvalidAmountRange PatternRuleErrorCode = "PRL-010004"
	ErrCodeRuleKeywordTooLong     PatternRuleErrorCode = "PRL-010005"
	ErrCodeRuleTableInvalid       PatternRuleErrorCode = "PRL-010006"

	// Resource errors (02XXXX)
	ErrCodePatternRuleNotFound PatternRuleErrorCode = "PRL-020001"

	// Conflict errors (03XXXX)
	ErrCodeDuplicateRulePriority PatternRuleErrorCode = "PRL-030001"
)

// PatternRuleError represents a pattern rule error with code and message.
type PatternRuleError struct {
	Code    PatternRuleErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PatternRuleError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PatternRuleError) Unwrap() error {
	return e.Err
}

// NewPatternRuleError creates a new PatternRuleError with the given code and message.
func NewPatternRuleError(code PatternRuleErrorCode, message string, err error) *PatternRuleError {
	return &PatternRuleError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
