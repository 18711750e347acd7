// Package apperror defines the error taxonomy shared by the stores and services.
// Every failure that leaves a repository or service is an *Error carrying a Kind,
// so callers can branch on the outcome without string matching.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// Unknown is for errors that were not classified
	Unknown Kind = iota
	// InvalidEdge is a follow edge that may not exist, e.g. a self-follow
	InvalidEdge
	// DuplicateEdge is a second edge for an existing (follower, followed) pair
	DuplicateEdge
	// NotFound is an operation on a record that does not exist
	NotFound
	// TransientStore is an I/O, timeout or serialization failure; safe to retry
	TransientStore
	// ConstraintViolation is a reference to a user that does not exist
	ConstraintViolation
	// Validation is input rejected by field rules
	Validation
	// Conflict is a uniqueness violation outside the follow graph (username, email)
	Conflict
	// Unauthenticated is a failed credential check
	Unauthenticated
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	InvalidEdge:         "invalid_edge",
	DuplicateEdge:       "duplicate_edge",
	NotFound:            "not_found",
	TransientStore:      "transient_store",
	ConstraintViolation: "constraint_violation",
	Validation:          "validation",
	Conflict:            "conflict",
	Unauthenticated:     "unauthenticated",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the application error type.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "relationships.create"
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. This lets callers
// compare against sentinels such as ErrNotFound regardless of message or op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether the caller may retry the operation unchanged.
func (e *Error) Retryable() bool {
	return e.Kind == TransientStore
}

// New creates an error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Wrap creates an error of the given kind attributed to op.
func Wrap(op string, kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Sentinels for errors.Is comparisons. They match any *Error of the same kind.
var (
	ErrInvalidEdge         = New(InvalidEdge, "invalid edge", nil)
	ErrDuplicateEdge       = New(DuplicateEdge, "duplicate edge", nil)
	ErrNotFound            = New(NotFound, "not found", nil)
	ErrTransientStore      = New(TransientStore, "transient store error", nil)
	ErrConstraintViolation = New(ConstraintViolation, "constraint violation", nil)
	ErrValidation          = New(Validation, "validation failed", nil)
	ErrConflict            = New(Conflict, "conflict", nil)
	ErrUnauthenticated     = New(Unauthenticated, "unauthenticated", nil)
)

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether any error in err's chain says it may be retried.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}
