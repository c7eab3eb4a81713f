package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/roach88/contactsync/internal/row"
)

// RawContact returns the raw_contacts row with the given id.
// The bool is false if no such row exists.
func (p *Provider) RawContact(ctx context.Context, id int64) (row.Values, bool, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT _id, source_id, starred, dirty, deleted
		FROM raw_contacts
		WHERE _id = ?
	`, id)
	if err != nil {
		return row.Values{}, false, fmt.Errorf("query raw contact %d: %w", id, err)
	}
	defer rows.Close()

	all, err := scanValues(rows)
	if err != nil {
		return row.Values{}, false, fmt.Errorf("scan raw contact %d: %w", id, err)
	}
	if len(all) == 0 {
		return row.Values{}, false, nil
	}
	return all[0], true, nil
}

// DataRows returns all data rows of a raw contact ordered by _id.
// Returns an empty slice (not nil) if there are none.
func (p *Provider) DataRows(ctx context.Context, rawContactID int64) ([]row.Values, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT *
		FROM data
		WHERE raw_contact_id = ?
		ORDER BY _id ASC
	`, rawContactID)
	if err != nil {
		return nil, fmt.Errorf("query data rows of %d: %w", rawContactID, err)
	}
	defer rows.Close()

	all, err := scanValues(rows)
	if err != nil {
		return nil, fmt.Errorf("scan data rows of %d: %w", rawContactID, err)
	}
	return all, nil
}

// RawContactIDs returns the ids of all raw contacts not flagged deleted,
// in ascending order.
func (p *Provider) RawContactIDs(ctx context.Context) ([]int64, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT _id FROM raw_contacts WHERE deleted = 0 ORDER BY _id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query raw contact ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan raw contact id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw contact ids: %w", err)
	}
	return ids, nil
}

// scanValues reads every remaining row into row.Values keyed by column name.
func scanValues(rows *sql.Rows) ([]row.Values, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []row.Values{}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		var vals row.Values
		for i, col := range cols {
			v, err := columnValue(col, raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			vals.Set(col, v)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// columnValue converts a scanned value. Text may come back from the driver
// as []byte; only data15 holds binary data.
func columnValue(col string, v any) (row.Value, error) {
	switch val := v.(type) {
	case []byte:
		if col == row.ColData15 {
			return row.FromAny(val)
		}
		return row.String(string(val)), nil
	case float64:
		return row.String(strconv.FormatFloat(val, 'f', -1, 64)), nil
	}
	return row.FromAny(v)
}
