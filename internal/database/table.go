package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/TobiSchelling/cfpsync/internal/sheet"
)

// Table is a worksheet stored in SQLite. Row numbers follow spreadsheet
// conventions: row 1 is the header.
type Table struct {
	db   *DB
	name string
}

// Table returns the named worksheet. It need not exist yet.
func (db *DB) Table(name string) *Table {
	return &Table{db: db, name: name}
}

// Read returns the header and data rows in row order.
func (t *Table) Read(ctx context.Context) (*sheet.State, error) {
	rows, err := t.db.conn.QueryContext(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY row_num`, t.name,
	)
	if err != nil {
		return nil, fmt.Errorf("reading table %q: %w", t.name, err)
	}
	defer rows.Close()

	var values [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decoding row of %q: %w", t.name, err)
		}
		values = append(values, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sheet.FromValues(values), nil
}

// Write inserts rows starting at start. Existing rows are never replaced: the
// start must be the first free row.
func (t *Table) Write(ctx context.Context, start sheet.Cell, values [][]string) error {
	tx, err := t.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(row_num) FROM sheet_rows WHERE sheet = ?`, t.name,
	).Scan(&last); err != nil {
		return fmt.Errorf("finding last row of %q: %w", t.name, err)
	}
	if next := int(last.Int64) + 1; start.Row != next {
		return fmt.Errorf("write at %s in %q: first free row is %d", start, t.name, next)
	}

	for i, cells := range values {
		data, err := json.Marshal(cells)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet, row_num, cells) VALUES (?, ?, ?)`,
			t.name, start.Row+i, string(data),
		); err != nil {
			return fmt.Errorf("inserting row %d of %q: %w", start.Row+i, t.name, err)
		}
	}
	return tx.Commit()
}

// RowCount returns the number of stored rows, header included.
func (t *Table) RowCount(ctx context.Context) (int, error) {
	var n int
	err := t.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sheet_rows WHERE sheet = ?`, t.name,
	).Scan(&n)
	return n, err
}
