// Package row describes what travels between the contact mapping layer and
// the content provider: typed column values, ordered column maps, queued row
// operations with back-references, and their results.
//
// # Values
//
// Column values are a sealed set (Null, String, Int, Bool, Blob). Floats are
// not representable; the provider stores no floating point columns.
//
// # Operations
//
// An Operation is an insert, update or delete against one table. Insert
// columns may carry a BackReference instead of a literal: "use the id
// produced by the operation at queue position N". The transaction engine
// rewrites references before each transport call (see package txn).
//
// # Store contract
//
// schema.go names the tables, columns and asset addresses shared by the
// provider, the field handlers and the orchestration layer.
package row
