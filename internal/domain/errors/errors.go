package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")

	ErrUnsupportedCurrency   = errors.New("unsupported currency")
	ErrTransactionFailed     = errors.New("transaction failed")
	ErrPaymentEventNotFound  = errors.New("payment event not found")
	ErrCorruptedWalletRecord = errors.New("corrupted wallet record")
	ErrRpcUnavailable        = errors.New("rpc unavailable")
	ErrEventSourceMismatch   = errors.New("event emitted by unexpected contract")
	ErrEventDecode           = errors.New("payment event decode failed")
)

// Error codes
const (
	CodeNotFound             = "ERR_NOT_FOUND"
	CodeBadRequest           = "ERR_BAD_REQUEST"
	CodeUnauthorized         = "ERR_UNAUTHORIZED"
	CodeConflict             = "ERR_CONFLICT"
	CodeInvalidCredentials   = "ERR_INVALID_CREDENTIALS"
	CodeUnsupportedCurrency  = "ERR_UNSUPPORTED_CURRENCY"
	CodeTransactionFailed    = "ERR_TRANSACTION_FAILED"
	CodePaymentEventNotFound = "ERR_PAYMENT_EVENT_NOT_FOUND"
	CodeRpcUnavailable       = "ERR_RPC_UNAVAILABLE"
	CodeInternalError        = "ERR_INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// TransactionFailedError reports a mined transaction whose execution did not succeed.
type TransactionFailedError struct {
	TxHash string
	Status uint64
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed with status %d", e.TxHash, e.Status)
}

func (e *TransactionFailedError) Unwrap() error {
	return ErrTransactionFailed
}

// FromDomain maps a domain sentinel to its HTTP representation.
// Errors that already are *AppError are returned unchanged.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeBadRequest, err.Error(), err)
	case errors.Is(err, ErrUnsupportedCurrency):
		return NewAppError(http.StatusBadRequest, CodeUnsupportedCurrency, err.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password", err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrTransactionFailed):
		return NewAppError(http.StatusUnprocessableEntity, CodeTransactionFailed, err.Error(), err)
	case errors.Is(err, ErrPaymentEventNotFound), errors.Is(err, ErrEventSourceMismatch), errors.Is(err, ErrEventDecode):
		return NewAppError(http.StatusUnprocessableEntity, CodePaymentEventNotFound, err.Error(), err)
	case errors.Is(err, ErrRpcUnavailable):
		return NewAppError(http.StatusBadGateway, CodeRpcUnavailable, "blockchain node unavailable", err)
	default:
		return InternalError(err)
	}
}
