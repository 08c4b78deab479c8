// Package apperr defines the caller-visible error taxonomy of the payment
// core. Every failure carries a stable machine code and a human message; the
// HTTP layer maps codes to statuses without inspecting message text.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeNotFound             Code = "NOT_FOUND"
	CodeAmountMismatch       Code = "AMOUNT_MISMATCH"
	CodePermissionDenied     Code = "PERMISSION_DENIED"
	CodeInsufficientStock    Code = "INSUFFICIENT_STOCK"
	CodeInvalidPaymentStatus Code = "INVALID_PAYMENT_STATUS"
	CodeInvalidCancelRequest Code = "INVALID_CANCEL_REQUEST"
	CodeExceedCancelQuantity Code = "EXCEED_CANCEL_QUANTITY"
	CodeExceedsPaymentAmount Code = "EXCEEDS_PAYMENT_AMOUNT"
	CodeGateway              Code = "GATEWAY_ERROR"
	CodeInternal             Code = "INTERNAL"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes two apperr errors match when their codes match, so tests and
// callers can use errors.Is against a bare New(code, "").
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the taxonomy code from err, or CodeInternal for anything
// outside the taxonomy. Nil maps to the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case "":
		return http.StatusOK

	case CodeNotFound:
		return http.StatusNotFound

	case CodePermissionDenied:
		return http.StatusForbidden

	case CodeAmountMismatch,
		CodeInvalidCancelRequest,
		CodeExceedCancelQuantity:
		return http.StatusBadRequest

	case CodeInsufficientStock,
		CodeInvalidPaymentStatus,
		CodeExceedsPaymentAmount:
		return http.StatusConflict

	case CodeGateway:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
