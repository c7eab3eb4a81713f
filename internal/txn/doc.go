// Package txn implements the batched transaction engine that writes a queue
// of row operations through a size-capped Transport.
//
// ARCHITECTURE:
//
// A Batch is built fresh for one logical write. Callers Enqueue operations;
// the returned position can be used right away as a back-reference target by
// later operations ("insert the parent row, then child rows that take the
// parent's not-yet-known id").
//
// Commit sends the whole queue in one Transport call. When the transport
// rejects the call with ErrPayloadTooLarge, the range is bisected and each
// half is sent on its own, recursively. Before every call the engine
// produces a fresh copy of the sub-batch in which:
//   - back-references to operations before the sub-batch are replaced by
//     the literal id already returned for them
//   - back-references inside the sub-batch are renumbered relative to it
//
// so the transport never sees a reference to an operation it is not
// executing. Results are stored at their original queue positions no matter
// how the queue was split.
//
// Splitting gives up atomicity across chunks: when the second half fails,
// the first half stays committed. Within one transport call the write is
// atomic.
//
// Batches are not safe for concurrent use. A Batch holds no state shared
// with other Batches.
package txn
