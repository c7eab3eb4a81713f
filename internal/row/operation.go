package row

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind is the type of a row operation.
type Kind int

// Valid values for Kind.
const (
	Insert Kind = iota + 1
	Update
	Delete
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// BackReference makes a column take the id produced by another operation.
//
// Original is the position of the referenced operation in the queue it was
// enqueued in. Index is the position the transport must resolve against:
// equal to Original until the transaction engine rewrites it relative to the
// sub-batch being sent.
type BackReference struct {
	Original int
	Index    int
}

// NewBackReference references the operation at queue position index.
func NewBackReference(index int) BackReference {
	return BackReference{Original: index, Index: index}
}

// Operation is one insert, update or delete against a provider table.
//
// Operations are values: the With* builders return modified copies and
// never touch the receiver.
type Operation struct {
	Kind  Kind
	Table string

	// Values holds literal column values (insert/update).
	Values Values

	// BackRefs maps a column to the operation whose id it takes.
	BackRefs map[string]BackReference

	// Selection is a WHERE clause with ? placeholders (update/delete).
	Selection     string
	SelectionArgs []Value

	// YieldAllowed marks a point where the transport may commit what it
	// has so far and let other writers in.
	YieldAllowed bool
}

// NewInsert starts an insert into table.
func NewInsert(table string) Operation {
	return Operation{Kind: Insert, Table: table}
}

// NewUpdate starts an update of table.
func NewUpdate(table string) Operation {
	return Operation{Kind: Update, Table: table}
}

// NewDelete starts a delete from table.
func NewDelete(table string) Operation {
	return Operation{Kind: Delete, Table: table}
}

// With returns a copy with column set to a literal value.
// Any back-reference on the same column is dropped.
func (op Operation) With(column string, v Value) Operation {
	out := op.Clone()
	out.Values.Set(column, v)
	delete(out.BackRefs, column)
	return out
}

// WithBackReference returns a copy whose column takes the id produced by the
// operation at queue position index.
func (op Operation) WithBackReference(column string, index int) Operation {
	out := op.Clone()
	out.Values.Delete(column)
	if out.BackRefs == nil {
		out.BackRefs = make(map[string]BackReference)
	}
	out.BackRefs[column] = NewBackReference(index)
	return out
}

// Where returns a copy with the given selection.
func (op Operation) Where(selection string, args ...Value) Operation {
	out := op.Clone()
	out.Selection = selection
	out.SelectionArgs = slices.Clone(args)
	return out
}

// Clone returns a deep copy.
func (op Operation) Clone() Operation {
	out := op
	out.Values = op.Values.Clone()
	if op.BackRefs != nil {
		out.BackRefs = maps.Clone(op.BackRefs)
	}
	out.SelectionArgs = slices.Clone(op.SelectionArgs)
	return out
}

// ReferencedColumns returns the back-referenced columns in sorted order.
func (op Operation) ReferencedColumns() []string {
	return slices.Sorted(maps.Keys(op.BackRefs))
}

// Validate checks the operation is well-formed.
func (op Operation) Validate() error {
	if op.Table == "" {
		return errors.New("operation has no target table")
	}
	switch op.Kind {
	case Insert:
		if op.Selection != "" {
			return fmt.Errorf("insert into %s: selection not allowed", op.Table)
		}
		if op.Values.Len() == 0 && len(op.BackRefs) == 0 {
			return fmt.Errorf("insert into %s: no columns", op.Table)
		}
	case Update:
		if op.Values.Len() == 0 && len(op.BackRefs) == 0 {
			return fmt.Errorf("update of %s: no columns", op.Table)
		}
		if strings.TrimSpace(op.Selection) == "" {
			return fmt.Errorf("update of %s: selection required", op.Table)
		}
	case Delete:
		if op.Values.Len() > 0 || len(op.BackRefs) > 0 {
			return fmt.Errorf("delete from %s: values not allowed", op.Table)
		}
		if strings.TrimSpace(op.Selection) == "" {
			return fmt.Errorf("delete from %s: selection required", op.Table)
		}
	default:
		return fmt.Errorf("operation on %s: invalid kind %d", op.Table, int(op.Kind))
	}
	return nil
}

// Result is what the transport reports for one executed Operation:
// the new row id for an insert, the affected row count otherwise.
type Result struct {
	ID    int64
	Count int64
}

// InsertResult is the result of an insert that produced row id.
func InsertResult(id int64) Result {
	return Result{ID: id, Count: 1}
}

// CountResult is the result of an update or delete touching n rows.
func CountResult(n int64) Result {
	return Result{Count: n}
}

// HasID reports whether the result carries a usable row id.
func (r Result) HasID() bool {
	return r.ID > 0
}

// Affected is this result's contribution to a commit's affected-row total:
// one for an insert that produced an id, the row count otherwise.
func (r Result) Affected() int64 {
	if r.HasID() {
		return 1
	}
	return r.Count
}
