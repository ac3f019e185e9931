// Package status defines the fixed set of return codes every public engine
// API resolves to, and the wrapping used to carry a cause underneath one.
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is one of the fixed status values every public function returns.
type Code int

const (
	OK Code = iota
	Declined
	EInval
	ENoEnt
	EAlloc
	EIncompat
	EUnknown
	ENotImpl
	EBusy
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case Declined:
		return "declined"
	case EInval:
		return "einval"
	case ENoEnt:
		return "enoent"
	case EAlloc:
		return "ealloc"
	case EIncompat:
		return "eincompat"
	case EUnknown:
		return "eunknown"
	case ENotImpl:
		return "enotimpl"
	case EBusy:
		return "ebusy"
	default:
		return fmt.Sprintf("status(%d)", int(c))
	}
}

// Error pairs a Code with a causal error, matching the teacher's pattern of
// layering typed errors (cmn.NewNotFoundError, et al.) over plain error.
type Error struct {
	Code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.msg, e.err)
	}
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.msg)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.err }

// New builds a status Error with no wrapped cause.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a status Error around an existing cause, keeping it
// reachable through Unwrap (errors.Unwrap / errors.As chains).
func Wrap(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...), err: errors.WithStack(err)}
}

// Is reports whether err resolves (directly or wrapped) to code.
func Is(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// CodeOf extracts the Code from err, defaulting to EUnknown for plain errors
// and OK for a nil error.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return EUnknown
}

// Declined is a routing signal, never logged as an error (spec.md §7).
func IsDeclined(err error) bool { return CodeOf(err) == Declined }
