// Package apperr defines the caller-correctable error taxonomy shared by the
// service layer. Every error carries a Kind the transport layer can map to a
// status code, plus a human-readable message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	// Internal is an unexpected failure, typically from the storage layer.
	Internal Kind = iota

	// Invalid marks malformed or missing input.
	Invalid

	// NotFound: a referenced record does not exist.
	NotFound

	// InvalidAmount: a non-positive covered amount or quantity, a negative
	// unit price, or a debt total edited below its already-covered amount.
	InvalidAmount

	// AllocationNotAllowed: the debt's person does not match the
	// transaction's receiving person.
	AllocationNotAllowed

	// DuplicateAllocation: an allocation already exists for the exact
	// (debt, transaction) pair.
	DuplicateAllocation

	// OverAllocation: the requested covered amount exceeds the debt's or
	// the transaction's remaining amount.
	OverAllocation

	// NotOwned: an allocation was referenced through the wrong debt or
	// transaction context.
	NotOwned

	// AllocationExists: deletion blocked because allocations reference the
	// record.
	AllocationExists

	// HasAttachments: deletion blocked because documents reference the
	// record.
	HasAttachments

	// Conflict: a uniqueness rule was violated (transaction code, email).
	Conflict

	// ConflictingDuplicate: a storage-layer uniqueness violation not caught
	// by pre-checks (race condition fallback).
	ConflictingDuplicate

	// Unauthorized: missing or invalid credentials.
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not_found"
	case InvalidAmount:
		return "invalid_amount"
	case AllocationNotAllowed:
		return "allocation_not_allowed"
	case DuplicateAllocation:
		return "duplicate_allocation"
	case OverAllocation:
		return "over_allocation"
	case NotOwned:
		return "not_owned"
	case AllocationExists:
		return "allocation_exists"
	case HasAttachments:
		return "has_attachments"
	case Conflict:
		return "conflict"
	case ConflictingDuplicate:
		return "conflicting_duplicate"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or Internal if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
