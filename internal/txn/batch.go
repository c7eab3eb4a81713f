package txn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/contactsync/internal/row"
)

// DefaultYieldInterval is the number of operations between yield points
// inside one transport call.
const DefaultYieldInterval = 499

// Batch is an ordered queue of row operations committed together.
//
// Construct one per logical write with New. Not safe for concurrent use.
type Batch struct {
	transport     Transport
	logger        *slog.Logger
	yieldInterval int

	queue     []row.Operation
	results   []row.Result
	committed bool
	stats     Stats
}

// Stats counts transport traffic of the last Commit.
type Stats struct {
	// Calls is the number of Transport.Apply invocations.
	Calls int
	// Splits is the number of times a range was bisected.
	Splits int
}

// Option configures a Batch.
type Option func(*Batch)

// WithYieldInterval sets the number of operations between yield points.
// Values below 1 are ignored.
func WithYieldInterval(n int) Option {
	return func(b *Batch) {
		if n >= 1 {
			b.yieldInterval = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates an empty Batch writing through t.
func New(t Transport, opts ...Option) *Batch {
	b := &Batch{
		transport:     t,
		logger:        slog.Default(),
		yieldInterval: DefaultYieldInterval,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enqueue appends op and returns its queue position, usable immediately as
// a back-reference target for operations enqueued after it.
func (b *Batch) Enqueue(op row.Operation) int {
	if b.committed {
		// A new round of operations invalidates the previous results.
		b.committed = false
		b.results = nil
	}
	b.queue = append(b.queue, op.Clone())
	return len(b.queue) - 1
}

// EnqueueAll appends ops in order and returns the position of the first.
func (b *Batch) EnqueueAll(ops []row.Operation) int {
	first := len(b.queue)
	for _, op := range ops {
		b.Enqueue(op)
	}
	return first
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.queue)
}

// Stats returns transport statistics of the last Commit.
func (b *Batch) Stats() Stats {
	return b.stats
}

// Commit executes the queue and returns the number of affected rows: one
// per insert that produced an id plus the counts of updates and deletes.
//
// The queue is cleared whether or not Commit succeeds. Committing an empty
// queue returns 0 without calling the transport.
//
// Errors are *CommitError.
func (b *Batch) Commit(ctx context.Context) (int64, error) {
	b.stats = Stats{}
	b.committed = false
	if len(b.queue) == 0 {
		return 0, nil
	}
	defer func() { b.queue = nil }()

	b.results = make([]row.Result, len(b.queue))
	if err := b.runBatch(ctx, 0, len(b.queue)); err != nil {
		return 0, err
	}
	b.committed = true

	var affected int64
	for _, r := range b.results {
		affected += r.Affected()
	}
	return affected, nil
}

// Result returns the result of the operation at queue position index.
// Only valid after a successful Commit.
func (b *Batch) Result(index int) (row.Result, bool) {
	if !b.committed || index < 0 || index >= len(b.results) {
		return row.Result{}, false
	}
	return b.results[index], true
}

// runBatch sends queue[start:end] and stores the results at the same
// positions. On ErrPayloadTooLarge the range is bisected.
func (b *Batch) runBatch(ctx context.Context, start, end int) error {
	if end == start {
		return nil
	}

	ops, err := b.prepare(start, end)
	if err != nil {
		return err
	}

	b.stats.Calls++
	results, err := b.transport.Apply(ctx, ops)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnresolvedReference):
			return NewUnresolvedCallError(start, end, err)
		case !errors.Is(err, ErrPayloadTooLarge):
			return NewTransportError(start, end, err)
		}
		if end-start <= 1 {
			return NewRowTooLargeError(start, err)
		}

		mid := start + (end-start)/2
		b.stats.Splits++
		b.logger.Debug("batch too large, splitting",
			"start", start, "mid", mid, "end", end)

		if err := b.runBatch(ctx, start, mid); err != nil {
			return err
		}
		return b.runBatch(ctx, mid, end)
	}

	if len(results) != end-start {
		return NewTransportError(start, end,
			fmt.Errorf("transport returned %d results for %d operations", len(results), end-start))
	}
	copy(b.results[start:end], results)
	return nil
}

// prepare builds the operations actually sent for queue[start:end].
// The queue itself is never modified.
func (b *Batch) prepare(start, end int) ([]row.Operation, error) {
	ops := make([]row.Operation, 0, end-start)
	for i := start; i < end; i++ {
		op := b.queue[i].Clone()
		for _, col := range op.ReferencedColumns() {
			ref := op.BackRefs[col]
			switch {
			case ref.Original < 0 || ref.Original >= i:
				return nil, NewUnresolvedReferenceError(i, col, ref.Original, "not an earlier operation")
			case ref.Original < start:
				// Executed by an earlier call: substitute the literal id.
				res := b.results[ref.Original]
				if !res.HasID() {
					return nil, NewUnresolvedReferenceError(i, col, ref.Original, "referenced operation produced no id")
				}
				op.Values.Set(col, row.Int(res.ID))
				delete(op.BackRefs, col)
			default:
				op.BackRefs[col] = row.BackReference{Original: ref.Original, Index: ref.Original - start}
			}
		}

		idx := i - start
		if idx > 0 && idx%b.yieldInterval == 0 {
			op.YieldAllowed = true
		}
		ops = append(ops, op)
	}
	return ops, nil
}
