package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/contactsync/internal/row"
	"github.com/roach88/contactsync/internal/txn"
)

// MemoryTransport is an in-memory txn.Transport that records every call.
//
// Inserts get ids from a Sequence starting at 1000. Updates and deletes
// report one affected row. Back-references are resolved exactly like a real
// provider would, so tests can inspect the literal values that ended up in
// each applied operation.
//
// A call is rejected with txn.ErrPayloadTooLarge when it carries more than
// MaxOps operations or when its canonical size exceeds MaxBytes (zero
// disables either limit). Rejected calls apply nothing.
type MemoryTransport struct {
	MaxOps   int
	MaxBytes int

	// Err, when set, fails every call with this error.
	Err error

	// NoID makes matching inserts report zero rows and no id.
	NoID func(op row.Operation) bool

	mu      sync.Mutex
	ids     *Sequence
	calls   [][]row.Operation
	applied []row.Operation
	results []row.Result
}

// NewMemoryTransport creates a transport without limits.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{ids: NewSequence(1000)}
}

// Apply implements txn.Transport.
func (m *MemoryTransport) Apply(ctx context.Context, ops []row.Operation) ([]row.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sent := make([]row.Operation, len(ops))
	for i, op := range ops {
		sent[i] = op.Clone()
	}
	m.calls = append(m.calls, sent)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.MaxOps > 0 && len(ops) > m.MaxOps {
		return nil, fmt.Errorf("%d operations: %w", len(ops), txn.ErrPayloadTooLarge)
	}
	if m.MaxBytes > 0 {
		size, err := row.EncodedSize(ops)
		if err != nil {
			return nil, err
		}
		if size > m.MaxBytes {
			return nil, fmt.Errorf("%d bytes: %w", size, txn.ErrPayloadTooLarge)
		}
	}

	results := make([]row.Result, len(ops))
	applied := make([]row.Operation, len(ops))
	for i, op := range ops {
		resolved := op.Clone()
		for _, col := range op.ReferencedColumns() {
			ref := op.BackRefs[col]
			if ref.Index < 0 || ref.Index >= i {
				return nil, fmt.Errorf("operation %d: back-reference %q to %d is not an earlier operation: %w",
					i, col, ref.Index, txn.ErrUnresolvedReference)
			}
			if !results[ref.Index].HasID() {
				return nil, fmt.Errorf("operation %d: back-reference %q to %d has no id: %w",
					i, col, ref.Index, txn.ErrUnresolvedReference)
			}
			resolved.Values.Set(col, row.Int(results[ref.Index].ID))
			delete(resolved.BackRefs, col)
		}

		switch {
		case op.Kind == row.Insert && m.NoID != nil && m.NoID(op):
			results[i] = row.CountResult(0)
		case op.Kind == row.Insert:
			results[i] = row.InsertResult(m.ids.Next())
		default:
			results[i] = row.CountResult(1)
		}
		applied[i] = resolved
	}

	m.applied = append(m.applied, applied...)
	m.results = append(m.results, results...)
	return results, nil
}

// Calls returns the operations of every call, as received.
func (m *MemoryTransport) Calls() [][]row.Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]row.Operation, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallSizes returns the number of operations in each call.
func (m *MemoryTransport) CallSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, len(m.calls))
	for i, c := range m.calls {
		sizes[i] = len(c)
	}
	return sizes
}

// Applied returns successfully applied operations in application order with
// back-references replaced by literal ids.
func (m *MemoryTransport) Applied() []row.Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]row.Operation, len(m.applied))
	copy(out, m.applied)
	return out
}

// AppliedResults returns the results matching Applied().
func (m *MemoryTransport) AppliedResults() []row.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]row.Result, len(m.results))
	copy(out, m.results)
	return out
}
