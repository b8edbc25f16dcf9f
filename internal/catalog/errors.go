package catalog

import (
	"errors"
	"fmt"
)

// ValidationError reports empty or malformed input. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports that the referenced book no longer exists.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book %d not found", e.ID)
}

// ConflictError reports that the selected book changed in storage since it
// was displayed.
type ConflictError struct {
	ID uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("book %d was modified since it was loaded", e.ID)
}

// StorageError wraps connection failures, constraint violations and query
// failures. The wrapped cause is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// User-facing messages for non-validation failures.
const (
	MessageNotFound = "That book no longer exists. The list has been refreshed."
	MessageConflict = "That book was changed by someone else. Review the current values and try again."
	MessageStorage  = "The library database is unavailable. Please try again."
)

// UserMessage maps an error returned by the Service to text that is safe to
// show in the UI.
func UserMessage(err error) string {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var conflictErr *ConflictError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &notFoundErr):
		return MessageNotFound
	case errors.As(err, &conflictErr):
		return MessageConflict
	default:
		return MessageStorage
	}
}
