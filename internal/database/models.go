package database

import "time"

// Column represents a table column with its metadata.
type Column struct {
	Name       string
	DataType   string
	IsNullable bool
	IsPrimary  bool
	Default    string
	OrdinalPos int
}

// TableSchema holds the reflected metadata of a single table.
type TableSchema struct {
	Name    string
	Columns []Column
}

// Row maps column names to scalar values for one result row.
// Values are copies owned by the caller.
type Row map[string]any

// RowSet holds the result of a SQL query execution. Columns preserves
// the projection order of the statement; Row keys index into it.
type RowSet struct {
	Columns  []string
	Rows     []Row
	RowCount int
	Duration time.Duration
}
