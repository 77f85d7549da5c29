package errors

import (
	"errors"
	"fmt"
)

// Custom error types for better error handling
var (
	// Persistence errors
	ErrPersistence        = errors.New("durable write failed")
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrTransactionFailed  = errors.New("transaction failed")

	// Entity errors
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateFolder = errors.New("folder already exists")
	ErrProtectedFolder = errors.New("folder is protected")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Backup errors
	ErrBackupFailed  = errors.New("backup operation failed")
	ErrRestoreFailed = errors.New("restore operation failed")
)

// AppError wraps errors with additional context
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(err error, message string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
	}
}
