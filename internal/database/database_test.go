package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TobiSchelling/cfpsync/internal/sheet"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadEmptyTable(t *testing.T) {
	db := openTestDB(t)
	state, err := db.Table("Sessions").Read(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.Empty() {
		t.Errorf("expected empty state, got %+v", state)
	}
}

func TestWriteAndRead(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	tbl := db.Table("Sessions")

	err := tbl.Write(ctx, sheet.Cell{Row: 1}, [][]string{
		{"id", "title"},
		{"a", "First"},
		{"b", "Second, with comma"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := tbl.Read(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Header) != 2 || state.Header[0] != "id" {
		t.Errorf("unexpected header %v", state.Header)
	}
	if len(state.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(state.Rows))
	}
	if state.Rows[1][1] != "Second, with comma" {
		t.Errorf("expected cell to round-trip, got %q", state.Rows[1][1])
	}
}

func TestWriteAppendsAfterLastRow(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	tbl := db.Table("Sessions")

	if err := tbl.Write(ctx, sheet.Cell{Row: 1}, [][]string{{"id"}, {"a"}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := tbl.Write(ctx, sheet.Cell{Row: 3}, [][]string{{"b"}}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	n, err := tbl.RowCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}
}

func TestWriteRefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	tbl := db.Table("Sessions")

	if err := tbl.Write(ctx, sheet.Cell{Row: 1}, [][]string{{"id"}, {"a"}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := tbl.Write(ctx, sheet.Cell{Row: 2}, [][]string{{"b"}}); err == nil {
		t.Error("expected error writing over an existing row")
	}
	if err := tbl.Write(ctx, sheet.Cell{Row: 5}, [][]string{{"b"}}); err == nil {
		t.Error("expected error leaving a gap")
	}

	state, _ := tbl.Read(ctx)
	if len(state.Rows) != 1 || state.Rows[0][0] != "a" {
		t.Errorf("existing rows changed: %v", state.Rows)
	}
}

func TestTablesAreIndependent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.Table("Sessions").Write(ctx, sheet.Cell{Row: 1}, [][]string{{"id"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	state, err := db.Table("Speakers").Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !state.Empty() {
		t.Error("expected other table to be empty")
	}
}

func TestTableSatisfiesInterface(t *testing.T) {
	var _ sheet.Table = openTestDB(t).Table("Sessions")
}
