package common

import "strings"

// ValidationError reports one or more malformed or missing input fields.
type ValidationError struct {
	Fields  []string
	Message string
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: message}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

// Is makes errors.Is(err, ErrorValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
