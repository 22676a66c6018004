package database

import (
	"database/sql"
	"fmt"
	"log"
)

// step is one schema version. Statements run in a single transaction.
type step struct {
	version int
	name    string
	stmts   []string
}

// schema lists every version in order. Append only.
var schema = []step{
	{1, "sheet rows", []string{`
CREATE TABLE IF NOT EXISTS sheet_rows (
    sheet TEXT NOT NULL,
    row_num INTEGER NOT NULL,
    cells TEXT NOT NULL,
    written_at TEXT DEFAULT (datetime('now')),
    PRIMARY KEY (sheet, row_num)
)`}},
	{2, "index rows by write time", []string{
		`CREATE INDEX IF NOT EXISTS idx_sheet_rows_written ON sheet_rows(sheet, written_at)`,
	}},
}

func schemaVersion(conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

func latestVersion() int {
	if len(schema) == 0 {
		return 0
	}
	return schema[len(schema)-1].version
}

// upgrade applies every step above the stored user_version.
func upgrade(conn *sql.DB) error {
	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}

	for _, s := range schema {
		if s.version <= current {
			continue
		}
		log.Printf("Upgrading table store to v%d: %s", s.version, s.name)
		if err := applyStep(conn, s); err != nil {
			return fmt.Errorf("schema v%d (%s): %w", s.version, s.name, err)
		}
		// modernc/sqlite ignores user_version inside a transaction. The DDL
		// is idempotent, so a crash before this line only repeats the step.
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", s.version)); err != nil {
			return fmt.Errorf("stamping v%d: %w", s.version, err)
		}
	}
	return nil
}

func applyStep(conn *sql.DB, s step) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range s.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
