package txn

import (
	"context"
	"errors"

	"github.com/roach88/contactsync/internal/row"
)

// ErrPayloadTooLarge is returned (possibly wrapped) by a Transport when the
// serialized batch exceeds its per-call limit. Nothing from the call was
// applied.
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrUnresolvedReference is returned (possibly wrapped) by a Transport when
// a back-reference inside the call points at an operation that produced no
// id. Nothing from the call was applied.
var ErrUnresolvedReference = errors.New("unresolved back-reference")

// Transport executes a list of operations as one atomic call.
//
// Back-references in ops use BackReference.Index, a position inside ops
// that is always lower than the referencing operation's own position.
//
// On success Apply returns exactly one Result per operation, in order.
// On failure nothing is applied; the error wraps ErrPayloadTooLarge when
// the call was rejected for size and ErrUnresolvedReference when a
// back-reference could not be satisfied.
type Transport interface {
	Apply(ctx context.Context, ops []row.Operation) ([]row.Result, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, ops []row.Operation) ([]row.Result, error)

// Apply implements Transport.
func (f TransportFunc) Apply(ctx context.Context, ops []row.Operation) ([]row.Result, error) {
	return f(ctx, ops)
}
