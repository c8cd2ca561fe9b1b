// Package apperr defines the error taxonomy shared by the service layer and
// the HTTP boundary. Every error produced by the engine carries a Kind so the
// boundary can map it to a transport status without string matching.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind classifies an error for status mapping and control flow.
type Kind int

const (
	// KindUnknown covers unclassified failures, typically store errors
	// propagated unchanged.
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidArgument
	KindInsufficientFunds
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a kinded error with an operator/user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on Kind, so sentinel-style checks like
// errors.Is(err, apperr.NotFound("")) work regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// InsufficientFundsError carries the balances needed for user-facing
// diagnostics. It participates in the taxonomy via KindOf.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available balance %s, requested %s",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

// InsufficientFunds builds the dedicated withdrawal failure.
func InsufficientFunds(available, requested decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{Available: available, Requested: requested}
}

// KindOf extracts the Kind from any error in err's chain.
func KindOf(err error) Kind {
	var ife *InsufficientFundsError
	if errors.As(err, &ife) {
		return KindInsufficientFunds
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
