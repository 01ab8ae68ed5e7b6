package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

// Validator checks one value and reports every failure it finds.
type Validator[T any] func(T) ValidationResult

// ValidationResult collects field failures. The zero value is not valid; use Valid().
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError is a single validation failure, addressed by a JSON-ish field path
// such as "objects[2].path".
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid creates a successful validation result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid creates a failed validation result.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// NewValidationError creates a FieldError.
func NewValidationError(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// Combine merges two results, keeping failures in order.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return Valid()
	}
	all := make([]FieldError, 0, len(vr.Errors)+len(other.Errors))
	all = append(all, vr.Errors...)
	all = append(all, other.Errors...)
	return Invalid(all...)
}

// ToError converts an invalid result to a classified validation error.
func (vr ValidationResult) ToError() error {
	if vr.Valid {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, fe := range vr.Errors {
		messages = append(messages, fe.Error())
	}
	b := errors.ValidationError(strings.Join(messages, "; "))
	for _, fe := range vr.Errors {
		b = b.WithContext(fe.Field, fe.Code)
	}
	return b.Build()
}

// ValidatorChain runs validators in order and combines their results.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator.
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	result := Valid()
	for _, validator := range vc.validators {
		result = result.Combine(validator(value))
	}
	return result
}

// RequiredString fails when the string is empty or only whitespace.
func RequiredString(field string) Validator[string] {
	return func(value string) ValidationResult {
		if strings.TrimSpace(value) == "" {
			return Invalid(NewValidationError(field, "required", "field is required"))
		}
		return Valid()
	}
}

// NonEmpty fails when the slice has no elements.
func NonEmpty[T any](field string) Validator[[]T] {
	return func(value []T) ValidationResult {
		if len(value) == 0 {
			return Invalid(NewValidationError(field, "non_empty", "must contain at least one element"))
		}
		return Valid()
	}
}
