// Package apperror holds the error taxonomy shared by the repositories and
// the HTTP handlers. Repositories only ever return *Error values; handlers
// classify them with KindOf and never surface the wrapped storage cause.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindConstraintViolation
	KindUnauthorized
	KindStorage
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrStorage             = errors.New("storage error")
)

// StorageMessage is the only text callers ever see for storage failures.
const StorageMessage = "internal storage error"

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindUnauthorized:
		return "unauthorized"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindConstraintViolation:
		return ErrConstraintViolation
	case KindUnauthorized:
		return ErrUnauthorized
	case KindStorage:
		return ErrStorage
	default:
		return nil
	}
}

// Error is a classified failure. Op names the repository operation
// ("books.borrow"), Message is safe to show to a caller, Err is the cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers write errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Conflict(op, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: fmt.Sprintf(format, args...)}
}

func ConstraintViolation(op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindConstraintViolation, Op: op, Message: fmt.Sprintf(format, args...), Err: cause}
}

func Unauthorized(op, format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a driver or connectivity failure. An already classified
// error passes through untouched.
func Storage(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if errors.As(cause, &ae) {
		return ae
	}
	return &Error{Kind: KindStorage, Op: op, Message: StorageMessage, Err: cause}
}

// KindOf reports the classification of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// PublicMessage returns the text that may be sent back to a caller.
// Storage and unclassified errors collapse to StorageMessage.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindStorage && ae.Kind != KindUnknown {
		return ae.Message
	}
	return StorageMessage
}
