package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents lookups of entities that do not exist
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents violations of uniqueness or relationship rules
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeValidation represents rejected input values
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStore represents failures of the backing store
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeInternal represents broken invariants inside the engine
	ErrorTypeInternal ErrorType = "internal"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Lookup Errors

// ErrUserNotFound is returned when a user id has no record
type ErrUserNotFound struct {
	*BaseError
	UserID string
}

func NewUserNotFound(userID string) *ErrUserNotFound {
	return &ErrUserNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("user not found: %s", userID), nil),
		UserID:    userID,
	}
}

// Conflict Errors

// ErrDuplicateUsername is returned when a create or rename collides with an
// existing username
type ErrDuplicateUsername struct {
	*BaseError
	Username string
}

func NewDuplicateUsername(username string) *ErrDuplicateUsername {
	return &ErrDuplicateUsername{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("username already taken: %s", username), nil),
		Username:  username,
	}
}

// ErrSelfFriendship is returned when a user is linked to itself
type ErrSelfFriendship struct {
	*BaseError
	UserID string
}

func NewSelfFriendship(userID string) *ErrSelfFriendship {
	return &ErrSelfFriendship{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("user cannot befriend itself: %s", userID), nil),
		UserID:    userID,
	}
}

// ErrAlreadyFriends is returned when linking an existing friendship
type ErrAlreadyFriends struct {
	*BaseError
	UserID   string
	FriendID string
}

func NewAlreadyFriends(userID, friendID string) *ErrAlreadyFriends {
	return &ErrAlreadyFriends{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("users %s and %s are already friends", userID, friendID), nil),
		UserID:    userID,
		FriendID:  friendID,
	}
}

// ErrNotFriends is returned when unlinking a friendship that does not exist
type ErrNotFriends struct {
	*BaseError
	UserID   string
	FriendID string
}

func NewNotFriends(userID, friendID string) *ErrNotFriends {
	return &ErrNotFriends{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("users %s and %s are not friends", userID, friendID), nil),
		UserID:    userID,
		FriendID:  friendID,
	}
}

// ErrHasFriends is returned when deleting a user that still has friends
type ErrHasFriends struct {
	*BaseError
	UserID      string
	FriendCount int
}

func NewHasFriends(userID string, friendCount int) *ErrHasFriends {
	return &ErrHasFriends{
		BaseError:   NewBaseError(ErrorTypeConflict, fmt.Sprintf("user %s still has %d friend(s), unfriend them first", userID, friendCount), nil),
		UserID:      userID,
		FriendCount: friendCount,
	}
}

// Validation Errors

// ErrValidation is returned when an input field is out of bounds
type ErrValidation struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidation(field, reason string) *ErrValidation {
	return &ErrValidation{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Store Errors

// ErrStoreUnavailable is returned when the backing store fails; it is
// propagated as-is, retry policy belongs to the adapter
type ErrStoreUnavailable struct {
	*BaseError
	Operation string
}

func NewStoreUnavailable(operation string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("store operation failed: %s", operation), err),
		Operation: operation,
	}
}

// Internal Errors

// ErrBrokenSymmetry is returned when the friendship relation is observed in
// an asymmetric state, which indicates a bug rather than a caller mistake
type ErrBrokenSymmetry struct {
	*BaseError
	Detail string
}

func NewBrokenSymmetry(detail string) *ErrBrokenSymmetry {
	return &ErrBrokenSymmetry{
		BaseError: NewBaseError(ErrorTypeInternal, fmt.Sprintf("friendship symmetry violated: %s", detail), nil),
		Detail:    detail,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	if typed, ok := err.(interface{ base() *BaseError }); ok {
		return typed.base().Type == errType
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(unwrapper.Unwrap(), errType)
	}
	return false
}

func (e *BaseError) base() *BaseError { return e }
