package greetings

import (
	"errors"
	"fmt"
)

// Kind classifies errors returned by the greetings core.
type Kind string

const (
	KindUnknownCategory  Kind = "UNKNOWN_CATEGORY"
	KindOutOfRange       Kind = "OUT_OF_RANGE"
	KindInvalidParameter Kind = "INVALID_PARAMETER"
	KindPageOutOfBounds  Kind = "PAGE_OUT_OF_BOUNDS"
	KindNotFound         Kind = "NOT_FOUND"
	KindNoTypesAvailable Kind = "NO_TYPES_AVAILABLE"
	KindTooManyRequests  Kind = "TOO_MANY_REQUESTS"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
)

// Error carries a Kind and a client-facing detail. Err is never shown to clients.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("greetings: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("greetings: %s: %s: %v", e.Kind, e.Detail, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrTooManyRequests is reported by the rate limiter.
var ErrTooManyRequests = &Error{Kind: KindTooManyRequests, Detail: "Too Many Requests"}

// KindOf returns the Kind of err, or KindStoreUnavailable for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreUnavailable
}

// DetailOf returns the client-facing message for err.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "internal server error"
}

func errUnknownCategory(token string) *Error {
	return &Error{
		Kind:   KindUnknownCategory,
		Detail: fmt.Sprintf("This is an invalid entry type: category %q does not exist", token),
	}
}

func errOutOfRange(detail string) *Error {
	return &Error{Kind: KindOutOfRange, Detail: detail}
}

func errInvalidParameter(detail string) *Error {
	return &Error{Kind: KindInvalidParameter, Detail: detail}
}

func errPageOutOfBounds(requested int, p Pagination) *Error {
	return &Error{
		Kind: KindPageOutOfBounds,
		Detail: fmt.Sprintf(
			"You requested page %d, but there are only %d pages available. Valid offsets are 0 to %d.",
			requested, p.TotalPages, p.OffsetLimit,
		),
	}
}

func errNotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func errNoTypesAvailable() *Error {
	return &Error{Kind: KindNoTypesAvailable, Detail: "No types available in the database"}
}

func errStoreUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Detail: "internal server error", Err: err}
}
