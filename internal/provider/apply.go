package provider

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/contactsync/internal/row"
	"github.com/roach88/contactsync/internal/txn"
)

var identifierRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// writableTables are the tables Apply accepts operations against.
var writableTables = map[string]bool{
	row.TableRawContacts: true,
	row.TableData:        true,
}

// Apply executes ops in one SQL transaction and returns one result per
// operation. It implements txn.Transport.
//
// Back-references are resolved by BackReference.Index against the results
// of earlier operations in the same call. Calls whose canonical encoding is
// larger than the payload limit fail with txn.ErrPayloadTooLarge before
// anything is executed.
func (p *Provider) Apply(ctx context.Context, ops []row.Operation) ([]row.Result, error) {
	if len(ops) == 0 {
		return []row.Result{}, nil
	}

	if p.maxPayloadBytes > 0 {
		size, err := row.EncodedSize(ops)
		if err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
		if size > p.maxPayloadBytes {
			return nil, fmt.Errorf("apply %d operations (%d bytes, limit %d): %w",
				len(ops), size, p.maxPayloadBytes, txn.ErrPayloadTooLarge)
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("apply: begin: %w", err)
	}
	defer tx.Rollback()

	results := make([]row.Result, 0, len(ops))
	for i, op := range ops {
		res, err := applyOne(ctx, tx, op, results)
		if err != nil {
			return nil, fmt.Errorf("apply op %d (%s %s): %w", i, op.Kind, op.Table, err)
		}
		results = append(results, res)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("apply: commit: %w", err)
	}

	p.logger.Debug("applied operations", "ops", len(ops))
	return results, nil
}

func applyOne(ctx context.Context, tx *sql.Tx, op row.Operation, prior []row.Result) (row.Result, error) {
	if err := op.Validate(); err != nil {
		return row.Result{}, err
	}
	if !writableTables[op.Table] {
		return row.Result{}, fmt.Errorf("table %q is not writable", op.Table)
	}

	cols, args, err := columnValues(op, prior)
	if err != nil {
		return row.Result{}, err
	}

	switch op.Kind {
	case row.Insert:
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			op.Table, strings.Join(cols, ", "), placeholders(len(cols)))
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return row.Result{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return row.Result{}, fmt.Errorf("last insert id: %w", err)
		}
		return row.InsertResult(id), nil

	case row.Update:
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = ?"
		}
		query := fmt.Sprintf("UPDATE %s SET %s", op.Table, strings.Join(sets, ", "))
		query, args = withSelection(query, args, op)
		return execCount(ctx, tx, query, args)

	default:
		query := "DELETE FROM " + op.Table
		query, args = withSelection(query, args, op)
		return execCount(ctx, tx, query, args)
	}
}

// columnValues returns the column list and arguments for op with its
// back-references resolved to literal ids.
func columnValues(op row.Operation, prior []row.Result) ([]string, []any, error) {
	var cols []string
	var args []any
	for _, k := range op.Values.Keys() {
		if !identifierRE.MatchString(k) {
			return nil, nil, fmt.Errorf("invalid column name %q", k)
		}
		v, _ := op.Values.Get(k)
		cols = append(cols, k)
		args = append(args, row.ToDriver(v))
	}
	for _, k := range op.ReferencedColumns() {
		if !identifierRE.MatchString(k) {
			return nil, nil, fmt.Errorf("invalid column name %q", k)
		}
		ref := op.BackRefs[k]
		if ref.Index < 0 || ref.Index >= len(prior) {
			return nil, nil, fmt.Errorf("column %s: back-reference to op %d out of range: %w",
				k, ref.Index, txn.ErrUnresolvedReference)
		}
		if !prior[ref.Index].HasID() {
			return nil, nil, fmt.Errorf("column %s: op %d produced no id: %w",
				k, ref.Index, txn.ErrUnresolvedReference)
		}
		cols = append(cols, k)
		args = append(args, prior[ref.Index].ID)
	}
	return cols, args, nil
}

func withSelection(query string, args []any, op row.Operation) (string, []any) {
	if op.Selection == "" {
		return query, args
	}
	for _, a := range op.SelectionArgs {
		args = append(args, row.ToDriver(a))
	}
	return query + " WHERE " + op.Selection, args
}

func execCount(ctx context.Context, tx *sql.Tx, query string, args []any) (row.Result, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return row.Result{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return row.Result{}, fmt.Errorf("rows affected: %w", err)
	}
	return row.CountResult(n), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
