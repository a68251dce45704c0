// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const tableName = "extractions"

// WriteSQLite writes t to a fresh SQLite database with one extractions
// table. All columns are TEXT; RowColumn preserves input order.
func WriteSQLite(ctx context.Context, path string, t *Table) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous database: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cols := make([]string, len(t.Header))
	defs := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h)
		defs[i] = cols[i] + " TEXT"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE %s (%s INTEGER PRIMARY KEY, %s)`, tableName, RowColumn, strings.Join(defs, ", ")),
		fmt.Sprintf(`CREATE INDEX idx_%s_crime_type ON %s(crime_type)`, tableName, tableName),
		fmt.Sprintf(`CREATE INDEX idx_%s_method ON %s(method_of_entry)`, tableName, tableName),
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)+1), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (%s)`,
		tableName, RowColumn, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for r, row := range t.Rows {
		args := make([]any, 0, len(row)+1)
		args = append(args, r+1)
		for _, v := range row {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", r+1, err)
		}
	}
	return tx.Commit()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
