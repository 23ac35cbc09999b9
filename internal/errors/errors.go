package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidInput         ErrorCode = "invalid_input"
	NotFound             ErrorCode = "not_found"
	Forbidden            ErrorCode = "forbidden"
	InvalidState         ErrorCode = "invalid_state"
	InsufficientStock    ErrorCode = "insufficient_stock"
	ListingUnavailable   ErrorCode = "listing_unavailable"
	DuplicateTransaction ErrorCode = "duplicate_transaction"
	DuplicateUser        ErrorCode = "duplicate_user"
	StorageError         ErrorCode = "storage_error"
	InternalError        ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps the error code to the status returned by the HTTP layer.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case InvalidState, ListingUnavailable:
		return http.StatusUnprocessableEntity
	case InsufficientStock, DuplicateTransaction, DuplicateUser:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrListingNotFound      = NewAppError(NotFound, "listing not found")
	ErrBidNotFound          = NewAppError(NotFound, "bid not found")
	ErrTransactionNotFound  = NewAppError(NotFound, "transaction not found")
	ErrUserNotFound         = NewAppError(NotFound, "user not found")
	ErrDuplicateUser        = NewAppError(DuplicateUser, "username already taken")
	ErrInsufficientStock    = NewAppError(InsufficientStock, "requested quantity exceeds available stock")
	ErrListingUnavailable   = NewAppError(ListingUnavailable, "listing is not accepting bids")
	ErrDuplicateTransaction = NewAppError(DuplicateTransaction, "transaction already recorded for this bid")
	ErrNotListingOwner      = NewAppError(Forbidden, "caller does not own the bid's listing")

	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin transaction from within a transaction")
)
