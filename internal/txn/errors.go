package txn

import (
	"errors"
	"fmt"
)

// CommitError is the single error type Commit surfaces.
//
// Start/End give the half-open range of the original queue that was being
// sent when the failure happened. Index is the operation at fault for
// ErrCodeRowTooLarge and ErrCodeUnresolvedReference, -1 otherwise.
type CommitError struct {
	Code    CommitErrorCode
	Message string
	Start   int
	End     int
	Index   int
	Err     error
}

// CommitErrorCode categorizes commit failures.
type CommitErrorCode string

const (
	// ErrCodeTransport indicates the transport failed for a reason other than size.
	ErrCodeTransport CommitErrorCode = "TRANSPORT_FAILURE"

	// ErrCodeRowTooLarge indicates a single operation exceeds the transport limit.
	ErrCodeRowTooLarge CommitErrorCode = "ROW_TOO_LARGE"

	// ErrCodeUnresolvedReference indicates a back-reference that cannot be
	// satisfied: forward reference, out of range, or a referenced insert
	// that produced no id.
	ErrCodeUnresolvedReference CommitErrorCode = "UNRESOLVED_REFERENCE"
)

// Error implements the error interface.
func (e *CommitError) Error() string {
	msg := fmt.Sprintf("%s: %s (ops %d..%d)", e.Code, e.Message, e.Start, e.End)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: %s (op %d)", e.Code, e.Message, e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CommitError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is a transport failure.
// Uses errors.As to handle wrapped errors.
func IsTransportError(err error) bool {
	return hasCode(err, ErrCodeTransport)
}

// IsRowTooLargeError returns true if a single operation exceeded the
// transport limit.
func IsRowTooLargeError(err error) bool {
	return hasCode(err, ErrCodeRowTooLarge)
}

// IsUnresolvedReferenceError returns true if a back-reference could not be
// resolved.
func IsUnresolvedReferenceError(err error) bool {
	return hasCode(err, ErrCodeUnresolvedReference)
}

func hasCode(err error, code CommitErrorCode) bool {
	var ce *CommitError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// NewTransportError creates a CommitError for a failed transport call.
func NewTransportError(start, end int, cause error) *CommitError {
	return &CommitError{
		Code:    ErrCodeTransport,
		Message: "transport call failed",
		Start:   start,
		End:     end,
		Index:   -1,
		Err:     cause,
	}
}

// NewRowTooLargeError creates a CommitError for an operation that cannot be
// split further.
func NewRowTooLargeError(index int, cause error) *CommitError {
	return &CommitError{
		Code:    ErrCodeRowTooLarge,
		Message: "can't transfer data to provider (data row too large)",
		Start:   index,
		End:     index + 1,
		Index:   index,
		Err:     cause,
	}
}

// NewUnresolvedCallError creates a CommitError for a call the transport
// rejected because a back-reference inside it produced no id.
func NewUnresolvedCallError(start, end int, cause error) *CommitError {
	return &CommitError{
		Code:    ErrCodeUnresolvedReference,
		Message: "transport could not resolve a back-reference",
		Start:   start,
		End:     end,
		Index:   -1,
		Err:     cause,
	}
}

// NewUnresolvedReferenceError creates a CommitError for a back-reference
// from operation index that cannot be satisfied.
func NewUnresolvedReferenceError(index int, column string, target int, reason string) *CommitError {
	return &CommitError{
		Code:    ErrCodeUnresolvedReference,
		Message: fmt.Sprintf("column %q references operation %d: %s", column, target, reason),
		Start:   index,
		End:     index + 1,
		Index:   index,
	}
}
