package errors

import (
	"errors"
	"fmt"
)

var (
	ErrLinkNotFound   = errors.New("link not found")
	ErrUnknownCounter = errors.New("unknown counter field")
	ErrNegativeDelta  = errors.New("counter delta must not be negative")
)

// Business error codes.
const (
	CodeCapacityExhausted = "CAPACITY_EXHAUSTED"
	CodeStoreError        = "STORE_ERROR"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

type BusinessError struct {
	Code    string
	Message string
	Cause   error
}

func (e *BusinessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Cause
}

func NewBusinessError(code, message string, cause error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewCapacityError reports that no free short code was found within the attempt budget.
func NewCapacityError(attempts int) *BusinessError {
	return NewBusinessError(
		CodeCapacityExhausted,
		fmt.Sprintf("failed to allocate a unique short code after %d attempts", attempts),
		nil,
	)
}

// NewStoreError wraps an underlying storage failure for operation op.
func NewStoreError(op string, cause error) *BusinessError {
	return NewBusinessError(CodeStoreError, "failed to "+op, cause)
}

// IsValidationError проверяет является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsBusinessError проверяет является ли ошибка бизнес-ошибкой
func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsCapacityError(err error) bool {
	businessErr := GetBusinessError(err)
	return businessErr != nil && businessErr.Code == CodeCapacityExhausted
}

func IsStoreError(err error) bool {
	businessErr := GetBusinessError(err)
	return businessErr != nil && businessErr.Code == CodeStoreError
}

func GetValidationError(err error) *ValidationError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return nil
}

// GetBusinessError извлекает BusinessError из ошибки
func GetBusinessError(err error) *BusinessError {
	var businessErr *BusinessError
	if errors.As(err, &businessErr) {
		return businessErr
	}
	return nil
}
